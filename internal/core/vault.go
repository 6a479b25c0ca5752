package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/guard"
	"github.com/illarion/onepass/internal/logger"
	"github.com/illarion/onepass/internal/record"
	"github.com/illarion/onepass/internal/storage"
)

var (
	ErrNotInitialized = storage.ErrNotInitialized
	ErrAlreadyExists  = storage.ErrAlreadyExists
	ErrTruncated      = storage.ErrTruncated
	ErrNoSnapshot     = storage.ErrNoSnapshot

	ErrWrongPassword    = errors.New("incorrect password or corrupt data")
	ErrMalformedRecord  = errors.New("malformed vault contents")
	ErrNotFound         = errors.New("resource not found")
	ErrResourceExists   = errors.New("resource already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPasswordRequired = errors.New("password required")
	ErrSnapshotPending  = errors.New("vault file is missing but its journal holds a snapshot")
)

// Vault manages the encrypted resource file at a single path
type Vault struct {
	path  string
	state *guard.State
	log   *logger.Logger
}

// New creates a Vault for the file at path.
// state is shared with the interrupt handler; a nil state or logger gets a private default.
func New(path string, state *guard.State, log *logger.Logger) *Vault {
	if state == nil {
		state = guard.NewState()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Vault{
		path:  path,
		state: state,
		log:   log,
	}
}

// Path returns the vault file location
func (v *Vault) Path() string {
	return v.path
}

// JournalPath returns the location of the vault's journal
func (v *Vault) JournalPath() string {
	return storage.JournalPath(v.path)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// indexOfTrimmed finds a record whose name equals name once both are trimmed
func indexOfTrimmed(resources []record.Resource, name string) int {
	name = strings.TrimSpace(name)
	for i := range resources {
		if strings.TrimSpace(resources[i].Name) == name {
			return i
		}
	}
	return -1
}

// Init creates a new vault holding no records
func (v *Vault) Init(ctx context.Context, password []byte) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if storage.Exists(v.path) {
		return ErrAlreadyExists
	}
	// A journal without its vault is the only copy left of a lost vault
	if pending, err := v.journalHasSnapshot(); err != nil {
		return err
	} else if pending {
		return ErrSnapshotPending
	}

	v.state.BeginOperation()
	defer v.state.EndOperation()

	if err := storage.Initialize(v.path); err != nil {
		return err
	}

	key := crypto.DeriveKey(password)
	enc, err := crypto.NewEncryptor(key)
	if err != nil {
		crypto.ClearBytes(key)
		storage.Purge(v.path)
		return err
	}
	defer enc.Destroy()

	if err := v.commit(ctx, enc, nil); err != nil {
		// Leave nothing behind so init can be retried
		storage.RemoveJournal(v.path)
		storage.Purge(v.path)
		return err
	}

	v.log.Info().Str("path", v.path).Msg("vault initialized")
	return nil
}

// List returns the names of all resources in stored order
func (v *Vault) List(ctx context.Context, password []byte) ([]string, error) {
	enc, resources, err := v.load(ctx, password)
	if err != nil {
		return nil, err
	}
	enc.Destroy()

	return record.Names(resources), nil
}

// Get returns the resource whose name matches exactly
func (v *Vault) Get(ctx context.Context, password []byte, name string) (record.Resource, error) {
	enc, resources, err := v.load(ctx, password)
	if err != nil {
		return record.Resource{}, err
	}
	enc.Destroy()

	i := record.Find(resources, name)
	if i < 0 {
		return record.Resource{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return resources[i], nil
}

// Create appends a new resource. Name and user are trimmed before storing.
func (v *Vault) Create(ctx context.Context, password []byte, r record.Resource) error {
	r = record.Normalize(r)
	if err := record.Validate(r); err != nil {
		return invalidInput(err)
	}

	return v.mutate(ctx, password, "create", func(resources []record.Resource) ([]record.Resource, error) {
		if indexOfTrimmed(resources, r.Name) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrResourceExists, r.Name)
		}
		return append(resources, r), nil
	})
}

// Update replaces one field of the resource named name.
// Renaming to a name held by another resource fails with ErrResourceExists.
func (v *Vault) Update(ctx context.Context, password []byte, name string, field record.Field, value string) error {
	if err := record.ValidateName(name); err != nil {
		return invalidInput(err)
	}
	value = record.NormalizeValue(field, value)
	if err := record.ValidateValue(field, value); err != nil {
		return invalidInput(err)
	}

	return v.mutate(ctx, password, "update", func(resources []record.Resource) ([]record.Resource, error) {
		i := record.Find(resources, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if field == record.FieldName {
			if j := indexOfTrimmed(resources, value); j >= 0 && j != i {
				return nil, fmt.Errorf("%w: %s", ErrResourceExists, value)
			}
		}
		resources[i].Set(field, value)
		return resources, nil
	})
}

// Delete removes the resource named name, keeping the order of the rest
func (v *Vault) Delete(ctx context.Context, password []byte, name string) error {
	if err := record.ValidateName(name); err != nil {
		return invalidInput(err)
	}

	return v.mutate(ctx, password, "delete", func(resources []record.Resource) ([]record.Resource, error) {
		i := record.Find(resources, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return append(resources[:i], resources[i+1:]...), nil
	})
}

// VerifyPassword checks that password opens the vault
func (v *Vault) VerifyPassword(ctx context.Context, password []byte) error {
	enc, _, err := v.load(ctx, password)
	if err != nil {
		return err
	}
	enc.Destroy()
	return nil
}

// mutate runs a read-modify-rewrite cycle with the operation flag raised
func (v *Vault) mutate(ctx context.Context, password []byte, op string, fn func([]record.Resource) ([]record.Resource, error)) error {
	v.state.BeginOperation()
	defer v.state.EndOperation()

	enc, resources, err := v.load(ctx, password)
	if err != nil {
		return err
	}
	defer enc.Destroy()

	resources, err = fn(resources)
	if err != nil {
		return err
	}

	if err := v.commit(ctx, enc, resources); err != nil {
		return err
	}

	v.log.Debug().Str("op", op).Int("records", len(resources)).Msg("vault rewritten")
	return nil
}

// load decrypts and parses the vault
func (v *Vault) load(ctx context.Context, password []byte) (*crypto.Encryptor, []record.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(password) == 0 {
		return nil, nil, ErrPasswordRequired
	}

	blob, err := storage.ReadAll(v.path)
	if err != nil {
		return nil, nil, err
	}

	enc, err := crypto.NewEncryptor(crypto.DeriveKey(password))
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := enc.Decrypt(blob.Nonce, blob.Ciphertext)
	if err != nil {
		enc.Destroy()
		if errors.Is(err, crypto.ErrAuthFailed) {
			return nil, nil, ErrWrongPassword
		}
		return nil, nil, err
	}
	defer crypto.ClearBytes(plaintext)

	resources, err := record.ParseAll(string(plaintext))
	if err != nil {
		enc.Destroy()
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	return enc, resources, nil
}

// commit encrypts resources under a fresh nonce, stages the result in the
// journal, and rewrites the vault file. Nothing touches the vault until the
// whole new blob exists in memory.
func (v *Vault) commit(ctx context.Context, enc *crypto.Encryptor, resources []record.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	plaintext := []byte(record.FormatAll(resources))
	defer crypto.ClearBytes(plaintext)

	nonce, err := crypto.GenerateNonce()
	if err != nil {
		return err
	}
	blob := storage.Blob{Nonce: nonce, Ciphertext: enc.Encrypt(nonce, plaintext)}

	journal, err := v.openJournal()
	if err != nil {
		return err
	}
	defer journal.Close()

	if err := journal.Stage(blob.Bytes()); err != nil {
		return fmt.Errorf("failed to stage vault write: %w", err)
	}

	// Last point at which an interrupt can still abandon the write cleanly
	if err := ctx.Err(); err != nil {
		if derr := journal.Discard(); derr != nil {
			v.log.Warn().Err(derr).Msg("failed to discard staged write")
		}
		return err
	}

	if err := storage.RewriteAll(v.path, blob); err != nil {
		v.log.Warn().Err(err).Str("journal", journal.Path()).Msg("vault rewrite failed; staged copy kept for recovery")
		return err
	}

	if err := journal.Commit(); err != nil {
		// The vault itself is already complete
		v.log.Warn().Err(err).Msg("failed to mark journal entry committed")
	}
	return nil
}

// openJournal opens the journal next to the vault, creating its buckets if needed
func (v *Vault) openJournal() (*storage.Journal, error) {
	journal, err := storage.OpenJournal(v.JournalPath())
	if err != nil {
		return nil, err
	}

	initialized, err := journal.IsInitialized()
	if err != nil {
		journal.Close()
		return nil, err
	}
	if !initialized {
		if err := journal.Initialize(); err != nil {
			journal.Close()
			return nil, fmt.Errorf("failed to initialize journal: %w", err)
		}
	}
	return journal, nil
}

// openExistingJournal opens the journal only if it is already on disk
func (v *Vault) openExistingJournal() (*storage.Journal, error) {
	if _, err := os.Stat(v.JournalPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}
	return storage.OpenJournal(v.JournalPath())
}

func (v *Vault) journalHasSnapshot() (bool, error) {
	journal, err := v.openExistingJournal()
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer journal.Close()

	_, _, err = journal.Latest()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNoSnapshot), errors.Is(err, storage.ErrJournalNotInitialized):
		return false, nil
	default:
		return false, err
	}
}
