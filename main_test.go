package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInterleavedFlags(t *testing.T) {
	fs, location := newFlagSet("get")
	show := fs.Bool("show", false, "")

	rest := parse(fs, []string{"twitter", "-show", "-l", "work.txt"})

	assert.Equal(t, []string{"twitter"}, rest)
	assert.True(t, *show)
	assert.Equal(t, "work.txt", *location)
}

func TestParsePositionalOnly(t *testing.T) {
	fs, location := newFlagSet("update")

	rest := parse(fs, []string{"twitter", "user", "bob"})

	assert.Equal(t, []string{"twitter", "user", "bob"}, rest)
	assert.Empty(t, *location)
}

func TestParseLongLocation(t *testing.T) {
	fs, location := newFlagSet("list")

	rest := parse(fs, []string{"--location", "vaults/main.txt"})

	assert.Empty(t, rest)
	assert.Equal(t, "vaults/main.txt", *location)
}

func TestParseTerminator(t *testing.T) {
	fs, location := newFlagSet("get")
	show := fs.Bool("show", false, "")

	rest := parse(fs, []string{"-l", "x", "--", "-weird", "-show"})

	assert.Equal(t, []string{"-weird", "-show"}, rest)
	assert.False(t, *show)
	assert.Equal(t, "x", *location)
}

func TestParseTerminatorAfterPositional(t *testing.T) {
	fs, _ := newFlagSet("new")

	rest := parse(fs, []string{"twitter", "--", "-bob"})

	assert.Equal(t, []string{"twitter", "-bob"}, rest)
}
