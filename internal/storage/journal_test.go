package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(JournalPath(filepath.Join(t.TempDir(), "vault")))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalInitialize(t *testing.T) {
	j := openTestJournal(t)

	initialized, err := j.IsInitialized()
	require.NoError(t, err)
	assert.False(t, initialized)

	require.NoError(t, j.Initialize())

	initialized, err = j.IsInitialized()
	require.NoError(t, err)
	assert.True(t, initialized)

	id, err := j.GetVaultID()
	require.NoError(t, err)
	assert.Len(t, id, 36)

	// Re-initializing keeps identity and creation time
	created, err := j.GetCreated()
	require.NoError(t, err)
	require.NoError(t, j.Initialize())

	id2, err := j.GetVaultID()
	require.NoError(t, err)
	created2, err := j.GetCreated()
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.True(t, created.Equal(created2))
}

func TestJournalStageCommit(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.Initialize())

	_, _, err := j.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, j.Stage([]byte("first")))

	pending, err := j.HasPending()
	require.NoError(t, err)
	assert.True(t, pending)

	blob, staged, err := j.Latest()
	require.NoError(t, err)
	assert.True(t, staged)
	assert.Equal(t, []byte("first"), blob)

	_, err = j.Committed()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, j.Commit())

	pending, err = j.HasPending()
	require.NoError(t, err)
	assert.False(t, pending)

	blob, staged, err = j.Latest()
	require.NoError(t, err)
	assert.False(t, staged)
	assert.Equal(t, []byte("first"), blob)

	// A staged blob shadows the committed one until discarded
	require.NoError(t, j.Stage([]byte("second")))
	blob, staged, err = j.Latest()
	require.NoError(t, err)
	assert.True(t, staged)
	assert.Equal(t, []byte("second"), blob)

	require.NoError(t, j.Discard())
	committed, err := j.Committed()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), committed)
}

func TestJournalRequiresInitialize(t *testing.T) {
	j := openTestJournal(t)

	assert.ErrorIs(t, j.Stage([]byte("x")), ErrJournalNotInitialized)
	_, _, err := j.Latest()
	assert.ErrorIs(t, err, ErrJournalNotInitialized)
}

func TestJournalGetOrCreateVaultID(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.GetOrCreateVaultID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, err := j.GetOrCreateVaultID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestJournalCompact(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.Initialize())

	for i := 0; i < 20; i++ {
		require.NoError(t, j.Stage(make([]byte, 64*1024)))
		require.NoError(t, j.Commit())
	}
	require.NoError(t, j.Stage([]byte("last")))
	require.NoError(t, j.Commit())

	require.NoError(t, j.Compact())

	blob, err := j.Committed()
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), blob)

	_, err = j.GetVaultID()
	assert.NoError(t, err)
}

func TestRemoveJournal(t *testing.T) {
	vault := filepath.Join(t.TempDir(), "vault")
	j, err := OpenJournal(JournalPath(vault))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	require.NoError(t, RemoveJournal(vault))
	require.NoError(t, RemoveJournal(vault), "missing journal is not an error")
}
