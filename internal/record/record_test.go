package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	r := Resource{Name: "twitter", User: "u@x.com", Password: "p"}
	assert.Equal(t, "resource\ntwitter\nu@x.com\np\n", r.Format())
}

func TestParseAll(t *testing.T) {
	resources := []Resource{
		{Name: "name0", User: "user0", Password: "pw0"},
		{Name: "name1", User: "", Password: "pw1"},
		{Name: "name2", User: "user2", Password: ""},
	}

	parsed, err := ParseAll(FormatAll(resources))
	require.NoError(t, err)
	assert.Equal(t, resources, parsed)
}

func TestParseAllEmpty(t *testing.T) {
	parsed, err := ParseAll(Bootstrap())
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseAllWithoutTrailingNewline(t *testing.T) {
	parsed, err := ParseAll("resource\na\nb\nc")
	require.NoError(t, err)
	assert.Equal(t, []Resource{{Name: "a", User: "b", Password: "c"}}, parsed)
}

func TestParseAllMalformed(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{"truncated final block", "resource\na\nb\nc\nresource\nd\n"},
		{"marker only", "resource\n"},
		{"missing marker", "a\nb\nc\nd\n"},
		{"stray blank line", "resource\na\nb\nc\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll(tt.plaintext)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFind(t *testing.T) {
	resources := []Resource{{Name: "a"}, {Name: "b"}, {Name: " c"}}

	assert.Equal(t, 1, Find(resources, "b"))
	assert.Equal(t, -1, Find(resources, "c"), "lookups are exact")
	assert.Equal(t, 2, Find(resources, " c"))
	assert.Equal(t, []string{"a", "b", " c"}, Names(resources))
}

func TestGetSet(t *testing.T) {
	r := Resource{Name: "n", User: "u", Password: "p"}
	r.Set(FieldUser, "new-user")

	assert.Equal(t, "n", r.Get(FieldName))
	assert.Equal(t, "new-user", r.Get(FieldUser))
	assert.Equal(t, "p", r.Get(FieldPassword))
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{
		"n": FieldName, "name": FieldName,
		"u": FieldUser, "USER": FieldUser,
		"p": FieldPassword, " password ": FieldPassword,
	} {
		got, err := ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseField("x")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Resource{Name: "github", User: "me", Password: "s3cret"}))

	assert.ErrorIs(t, Validate(Resource{Name: "resource"}), ErrReserved)
	assert.ErrorIs(t, Validate(Resource{Name: " nonce\t"}), ErrReserved)
	assert.ErrorIs(t, Validate(Resource{Name: "x", User: "resource"}), ErrReserved)
	assert.ErrorIs(t, Validate(Resource{Name: "x", Password: "nonce"}), ErrReserved)
	assert.ErrorIs(t, Validate(Resource{Name: "  "}), ErrInvalid)
	assert.ErrorIs(t, Validate(Resource{Name: "a\nb"}), ErrInvalid)
	assert.ErrorIs(t, Validate(Resource{Name: "a", Password: "p\r"}), ErrInvalid)
}

func TestValidatedStreamsRoundTrip(t *testing.T) {
	// Values that pass validation can never shift block boundaries
	r := Normalize(Resource{Name: "  resources ", User: " Resource", Password: " spaced pw "})
	require.NoError(t, Validate(r))

	parsed, err := ParseAll(strings.Repeat(r.Format(), 3))
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, "resources", parsed[0].Name)
	assert.Equal(t, "Resource", parsed[0].User)
	assert.Equal(t, " spaced pw ", parsed[0].Password)
}
