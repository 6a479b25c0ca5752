package record

import (
	"fmt"
	"strings"
)

// Field identifies one of the mutable record lines
type Field int

const (
	FieldName Field = iota
	FieldUser
	FieldPassword
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldUser:
		return "user"
	case FieldPassword:
		return "password"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField accepts the long field names and their one-letter forms
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "name":
		return FieldName, nil
	case "u", "user":
		return FieldUser, nil
	case "p", "password":
		return FieldPassword, nil
	}
	return 0, fmt.Errorf("%w: unknown field %q", ErrInvalid, s)
}

// IsReserved reports whether s collides with a stream keyword
func IsReserved(s string) bool {
	s = strings.TrimSpace(s)
	return s == Marker || s == ReservedNonce
}

// ValidateName checks a resource name supplied by a caller
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name can not be empty", ErrInvalid)
	}
	return validateValue(FieldName, name)
}

// ValidateValue checks a single field value before it enters the stream
func ValidateValue(f Field, value string) error {
	if f == FieldName {
		return ValidateName(value)
	}
	return validateValue(f, value)
}

func validateValue(f Field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s can not contain line breaks", ErrInvalid, f)
	}
	if IsReserved(value) {
		return fmt.Errorf("%w: %s %q", ErrReserved, f, strings.TrimSpace(value))
	}
	return nil
}

// Validate checks every field of a resource
func Validate(r Resource) error {
	for _, f := range []Field{FieldName, FieldUser, FieldPassword} {
		if err := ValidateValue(f, r.Get(f)); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeValue applies the write-side trimming rule for a field.
// Names and users are trimmed; passwords are stored as given.
func NormalizeValue(f Field, value string) string {
	if f == FieldPassword {
		return value
	}
	return strings.TrimSpace(value)
}

// Normalize applies NormalizeValue to every field
func Normalize(r Resource) Resource {
	return Resource{
		Name:     NormalizeValue(FieldName, r.Name),
		User:     NormalizeValue(FieldUser, r.User),
		Password: NormalizeValue(FieldPassword, r.Password),
	}
}
