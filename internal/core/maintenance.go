package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/record"
	"github.com/illarion/onepass/internal/storage"
)

// StatusInfo describes the vault and its journal without decrypting anything
type StatusInfo struct {
	Path        string
	Exists      bool
	Size        int64
	Truncated   bool // too short to hold a nonce and tag
	JournalPath string
	HasJournal  bool
	VaultID     string
	Created     time.Time
	Modified    time.Time
	Pending     bool // a staged write was never committed
	HasSnapshot bool
	Algorithm   string
}

// Status returns the current status (no password required)
func (v *Vault) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := &StatusInfo{
		Path:        v.path,
		JournalPath: v.JournalPath(),
		Algorithm:   "ChaCha20-Poly1305",
	}

	if size, err := storage.Size(v.path); err == nil {
		status.Exists = true
		status.Size = size
		status.Truncated = size < int64(crypto.NonceSize+crypto.TagSize)
	} else if !errors.Is(err, ErrNotInitialized) {
		return nil, err
	}

	journal, err := v.openExistingJournal()
	if errors.Is(err, ErrNoSnapshot) {
		if !status.Exists {
			return nil, ErrNotInitialized
		}
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()
	status.HasJournal = true

	// Everything below is informational
	status.VaultID, _ = journal.GetVaultID()
	status.Created, _ = journal.GetCreated()
	status.Modified, _ = journal.GetModified()
	status.Pending, _ = journal.HasPending()
	if _, _, err := journal.Latest(); err == nil {
		status.HasSnapshot = true
	}

	return status, nil
}

// RecoverResult reports what Recover restored
type RecoverResult struct {
	Records     int
	FromPending bool // restored a write that was interrupted
}

// Recover rewrites the vault from the newest journal snapshot.
// The snapshot must decrypt with password before anything is written.
func (v *Vault) Recover(ctx context.Context, password []byte) (*RecoverResult, error) {
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}

	v.state.BeginOperation()
	defer v.state.EndOperation()

	journal, err := v.openExistingJournal()
	if err != nil {
		return nil, err
	}
	defer journal.Close()

	raw, staged, err := journal.Latest()
	if errors.Is(err, storage.ErrJournalNotInitialized) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	blob, resources, err := v.openSnapshot(raw, password)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !storage.Exists(v.path) {
		if err := storage.Initialize(v.path); err != nil {
			return nil, err
		}
	}
	// The snapshot is written as-is, so no nonce is ever paired with new plaintext
	if err := storage.RewriteAll(v.path, blob); err != nil {
		return nil, err
	}

	if staged {
		if err := journal.Commit(); err != nil {
			v.log.Warn().Err(err).Msg("failed to mark recovered write committed")
		}
	}

	v.log.Info().Int("records", len(resources)).Bool("pending", staged).Msg("vault recovered")
	return &RecoverResult{Records: len(resources), FromPending: staged}, nil
}

// Diff compares the resource listing of the vault file against the journal
// snapshot that Recover would restore. It returns an empty string when both
// list the same resources.
func (v *Vault) Diff(ctx context.Context, password []byte) (string, error) {
	if len(password) == 0 {
		return "", ErrPasswordRequired
	}

	journal, err := v.openExistingJournal()
	if err != nil {
		return "", err
	}
	raw, _, err := journal.Latest()
	journal.Close()
	if errors.Is(err, storage.ErrJournalNotInitialized) {
		return "", ErrNoSnapshot
	}
	if err != nil {
		return "", err
	}

	_, snapshot, err := v.openSnapshot(raw, password)
	if err != nil {
		return "", err
	}

	// The snapshot opened with this password, so a vault file that does not
	// is damaged and counts as empty
	var current []record.Resource
	enc, resources, err := v.load(ctx, password)
	switch {
	case err == nil:
		enc.Destroy()
		current = resources
	case errors.Is(err, ErrNotInitialized), errors.Is(err, ErrTruncated),
		errors.Is(err, ErrWrongPassword), errors.Is(err, ErrMalformedRecord):
		v.log.Debug().Err(err).Msg("vault file unreadable, diffing against empty")
	default:
		return "", err
	}

	return GenerateUnifiedDiff("vault", "journal", listing(current), listing(snapshot))
}

// Purge removes the vault file and its journal
func (v *Vault) Purge(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.state.BeginOperation()
	defer v.state.EndOperation()

	vaultExists := storage.Exists(v.path)
	_, statErr := os.Stat(v.JournalPath())
	journalExists := statErr == nil
	if !vaultExists && !journalExists {
		return ErrNotInitialized
	}

	if err := storage.RemoveJournal(v.path); err != nil {
		return err
	}
	if vaultExists {
		if err := storage.Purge(v.path); err != nil {
			return err
		}
	} else {
		// Fails harmlessly when the directory still has other entries
		_ = os.Remove(filepath.Dir(v.path))
	}

	v.log.Info().Str("path", v.path).Msg("vault purged")
	return nil
}

// Compact compacts the journal to reclaim space left by earlier snapshots
func (v *Vault) Compact(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	journal, err := v.openExistingJournal()
	if errors.Is(err, ErrNoSnapshot) {
		return ErrNotInitialized
	}
	if err != nil {
		return err
	}
	defer journal.Close()

	return journal.Compact()
}

// GetVaultID retrieves the vault ID from the journal.
// The journal alone is enough, so purge can find the keyring entry of a vault
// whose file is already gone.
func (v *Vault) GetVaultID() (string, error) {
	journal, err := v.openExistingJournal()
	if errors.Is(err, ErrNoSnapshot) {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", err
	}
	defer journal.Close()

	return journal.GetVaultID()
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (v *Vault) GetOrCreateVaultID() (string, error) {
	if !storage.Exists(v.path) {
		return "", ErrNotInitialized
	}

	journal, err := v.openJournal()
	if err != nil {
		return "", err
	}
	defer journal.Close()

	return journal.GetOrCreateVaultID()
}

// openSnapshot decrypts and parses a journal blob
func (v *Vault) openSnapshot(raw, password []byte) (storage.Blob, []record.Resource, error) {
	blob, err := storage.ParseBlob(raw)
	if err != nil {
		return storage.Blob{}, nil, err
	}

	enc, err := crypto.NewEncryptor(crypto.DeriveKey(password))
	if err != nil {
		return storage.Blob{}, nil, err
	}
	defer enc.Destroy()

	plaintext, err := enc.Decrypt(blob.Nonce, blob.Ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			return storage.Blob{}, nil, ErrWrongPassword
		}
		return storage.Blob{}, nil, err
	}
	defer crypto.ClearBytes(plaintext)

	resources, err := record.ParseAll(string(plaintext))
	if err != nil {
		return storage.Blob{}, nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return blob, resources, nil
}
