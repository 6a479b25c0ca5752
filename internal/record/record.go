// Package record defines the plaintext encoding of credential records.
//
// A decrypted vault is a sequence of four-line blocks:
//
//	resource
//	<name>
//	<user>
//	<password>
//
// Every line, including the last, ends with a newline. An empty vault is the
// empty string.
package record

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Marker opens every record block
	Marker = "resource"
	// ReservedNonce is kept out of record fields alongside Marker
	ReservedNonce = "nonce"

	linesPerRecord = 4
)

var (
	ErrMalformed = errors.New("malformed record stream")
	ErrReserved  = errors.New("use of reserved keyword")
	ErrInvalid   = errors.New("invalid record field")
)

// Resource is a single stored credential
type Resource struct {
	Name     string
	User     string
	Password string
}

// Format renders the resource as its four-line block
func (r Resource) Format() string {
	var b strings.Builder
	b.Grow(len(Marker) + len(r.Name) + len(r.User) + len(r.Password) + linesPerRecord)
	b.WriteString(Marker)
	b.WriteByte('\n')
	b.WriteString(r.Name)
	b.WriteByte('\n')
	b.WriteString(r.User)
	b.WriteByte('\n')
	b.WriteString(r.Password)
	b.WriteByte('\n')
	return b.String()
}

// Get returns the value of a field
func (r Resource) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldUser:
		return r.User
	case FieldPassword:
		return r.Password
	}
	return ""
}

// Set replaces the value of a field
func (r *Resource) Set(f Field, value string) {
	switch f {
	case FieldName:
		r.Name = value
	case FieldUser:
		r.User = value
	case FieldPassword:
		r.Password = value
	}
}

// FormatAll renders resources in order
func FormatAll(resources []Resource) string {
	var b strings.Builder
	for _, r := range resources {
		b.WriteString(r.Format())
	}
	return b.String()
}

// Bootstrap returns the plaintext of a vault with no records
func Bootstrap() string {
	return ""
}

// ParseAll decodes a plaintext record stream.
// Blocks are read positionally; each must start with Marker and be complete.
func ParseAll(plaintext string) ([]Resource, error) {
	if plaintext == "" {
		return nil, nil
	}

	lines := strings.Split(plaintext, "\n")
	// A newline-terminated stream leaves one empty trailing element
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines)%linesPerRecord != 0 {
		return nil, fmt.Errorf("%w: truncated record after line %d", ErrMalformed, len(lines)-len(lines)%linesPerRecord)
	}

	resources := make([]Resource, 0, len(lines)/linesPerRecord)
	for i := 0; i < len(lines); i += linesPerRecord {
		if lines[i] != Marker {
			return nil, fmt.Errorf("%w: line %d: expected record marker", ErrMalformed, i+1)
		}
		resources = append(resources, Resource{
			Name:     lines[i+1],
			User:     lines[i+2],
			Password: lines[i+3],
		})
	}

	return resources, nil
}

// Names returns the name of every resource, in order
func Names(resources []Resource) []string {
	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.Name
	}
	return names
}

// Find returns the index of the first resource whose name equals name exactly, or -1
func Find(resources []Resource, name string) int {
	for i := range resources {
		if resources[i].Name == name {
			return i
		}
	}
	return -1
}
