package storage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// JournalSuffix is appended to the vault path to name its journal
const JournalSuffix = ".journal"

// Bucket names
var (
	ConfigBucket  = []byte("config")  // vault ID and timestamps
	JournalBucket = []byte("journal") // staged and committed vault blobs
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

// Journal keys
var (
	KeyPending   = []byte("pending")
	KeyCommitted = []byte("committed")
)

var (
	ErrJournalNotInitialized = errors.New("journal not initialized")
	ErrNoSnapshot            = errors.New("no snapshot in journal")
)

// JournalPath returns the journal location for a vault
func JournalPath(vaultPath string) string {
	return vaultPath + JournalSuffix
}

// Journal is a bbolt sidecar that stages every vault blob before the vault
// file is rewritten, so an interrupted rewrite can be completed later.
type Journal struct {
	db *bolt.DB
}

// OpenJournal opens or creates a journal database
func OpenJournal(path string) (*Journal, error) {
	db, err := bolt.Open(path, FilePermSecure, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the journal file location
func (j *Journal) Path() string {
	return j.db.Path()
}

// Initialize creates the bucket structure and assigns a vault ID
func (j *Journal) Initialize() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, JournalBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		if config.Get(ConfigVaultID) == nil {
			if err := config.Put(ConfigVaultID, []byte(uuid.NewString())); err != nil {
				return err
			}
		}

		now, _ := time.Now().MarshalBinary()
		if config.Get(ConfigCreated) == nil {
			if err := config.Put(ConfigCreated, now); err != nil {
				return err
			}
		}
		return config.Put(ConfigModified, now)
	})
}

// IsInitialized checks if the journal has been initialized
func (j *Journal) IsInitialized() (bool, error) {
	var initialized bool
	err := j.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil && tx.Bucket(JournalBucket) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// Stage records a blob that is about to be written to the vault file
func (j *Journal) Stage(blob []byte) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}
		return journal.Put(KeyPending, blob)
	})
}

// Commit marks the staged blob as fully written
func (j *Journal) Commit() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}

		pending := journal.Get(KeyPending)
		if pending == nil {
			return nil
		}
		// Copy: the slice is only valid until the bucket is modified
		blob := append([]byte(nil), pending...)
		if err := journal.Put(KeyCommitted, blob); err != nil {
			return err
		}
		if err := journal.Delete(KeyPending); err != nil {
			return err
		}

		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// Discard drops a staged blob that was never written
func (j *Journal) Discard() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}
		return journal.Delete(KeyPending)
	})
}

// HasPending reports whether a staged blob was never committed
func (j *Journal) HasPending() (bool, error) {
	var pending bool
	err := j.db.View(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}
		pending = journal.Get(KeyPending) != nil
		return nil
	})
	return pending, err
}

// Latest returns the most recent blob: the staged one if present,
// otherwise the committed one. The second result is true for a staged blob.
func (j *Journal) Latest() ([]byte, bool, error) {
	var (
		blob   []byte
		staged bool
	)
	err := j.db.View(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}
		data := journal.Get(KeyPending)
		staged = data != nil
		if data == nil {
			data = journal.Get(KeyCommitted)
		}
		if data == nil {
			return ErrNoSnapshot
		}
		// Make a copy since the slice is only valid during the transaction
		blob = append([]byte(nil), data...)
		return nil
	})
	return blob, staged, err
}

// Committed returns the blob last known to be fully written
func (j *Journal) Committed() ([]byte, error) {
	var blob []byte
	err := j.db.View(func(tx *bolt.Tx) error {
		journal := tx.Bucket(JournalBucket)
		if journal == nil {
			return ErrJournalNotInitialized
		}
		data := journal.Get(KeyCommitted)
		if data == nil {
			return ErrNoSnapshot
		}
		blob = append([]byte(nil), data...)
		return nil
	})
	return blob, err
}

func (j *Journal) getTime(key []byte) (time.Time, error) {
	var t time.Time
	err := j.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrJournalNotInitialized
		}
		data := config.Get(key)
		if data == nil {
			return fmt.Errorf("%s time not found", key)
		}
		return t.UnmarshalBinary(data)
	})
	return t, err
}

// GetCreated retrieves the creation timestamp
func (j *Journal) GetCreated() (time.Time, error) {
	return j.getTime(ConfigCreated)
}

// GetModified retrieves the last modified timestamp
func (j *Journal) GetModified() (time.Time, error) {
	return j.getTime(ConfigModified)
}

// GetVaultID retrieves the vault ID from config bucket
func (j *Journal) GetVaultID() (string, error) {
	var vaultID string
	err := j.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrJournalNotInitialized
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (j *Journal) GetOrCreateVaultID() (string, error) {
	vaultID, err := j.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()
	err = j.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return err
		}
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// Compact creates a compacted copy of the journal, removing unused space.
// Staged blobs are rewritten on every vault write, so the file grows until compacted.
func (j *Journal) Compact() error {
	srcPath := j.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, FilePermSecure, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact journal: %w", err)
	}

	err = j.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact journal: %w", err)
	}

	if err := j.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source journal: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace journal: %w", err)
	}
	os.Remove(backupPath)

	j.db, err = bolt.Open(srcPath, FilePermSecure, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen journal: %w", err)
	}

	return nil
}

// RemoveJournal deletes the journal file for a vault
func RemoveJournal(vaultPath string) error {
	err := os.Remove(JournalPath(vaultPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove journal: %w", err)
	}
	return nil
}
