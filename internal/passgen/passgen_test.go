package passgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	for i := 0; i < 15; i++ {
		p, err := Suggest(DefaultLength)
		require.NoError(t, err)
		assert.Len(t, p, DefaultLength)

		assert.True(t, strings.ContainsAny(p, Uppercase), "missing uppercase: %s", p)
		assert.True(t, strings.ContainsAny(p, Lowercase), "missing lowercase: %s", p)
		assert.True(t, strings.ContainsAny(p, Numbers), "missing number: %s", p)
		assert.True(t, strings.ContainsAny(p, SpecialChars), "missing special char: %s", p)
		assert.NotContains(t, p, " ")
	}
}

func TestSuggestMinimum(t *testing.T) {
	p, err := Suggest(MinLength)
	require.NoError(t, err)
	assert.Len(t, p, MinLength)

	_, err = Suggest(MinLength - 1)
	assert.Error(t, err)
}

func TestSuggestVaries(t *testing.T) {
	a, err := Suggest(32)
	require.NoError(t, err)
	b, err := Suggest(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
