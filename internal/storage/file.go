package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/illarion/onepass/internal/crypto"
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only
)

var (
	ErrNotInitialized = errors.New("vault not initialized")
	ErrAlreadyExists  = errors.New("vault already exists")
	ErrTruncated      = errors.New("vault file is truncated")
)

// StorageError is an I/O failure on the vault file
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotInitialized
	}
	return &StorageError{Op: op, Path: path, Err: err}
}

// Blob is the on-disk content of a vault: nonce followed by ciphertext
type Blob struct {
	Nonce      []byte
	Ciphertext []byte
}

// Bytes returns nonce||ciphertext as one buffer
func (b Blob) Bytes() []byte {
	raw := make([]byte, len(b.Nonce)+len(b.Ciphertext))
	copy(raw, b.Nonce)
	copy(raw[len(b.Nonce):], b.Ciphertext)
	return raw
}

// ParseBlob splits raw file content into nonce and ciphertext
func ParseBlob(raw []byte) (Blob, error) {
	if len(raw) < crypto.NonceSize {
		return Blob{}, ErrTruncated
	}
	return Blob{
		Nonce:      append([]byte(nil), raw[:crypto.NonceSize]...),
		Ciphertext: append([]byte(nil), raw[crypto.NonceSize:]...),
	}, nil
}

// Exists reports whether a vault file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Initialize creates parent directories and an empty vault file.
// It fails with ErrAlreadyExists if the file is already there.
func Initialize(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPermSecure); err != nil {
		return &StorageError{Op: "create directory for", Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, FilePermSecure)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrAlreadyExists
		}
		return &StorageError{Op: "create", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &StorageError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// ReadAll reads the nonce and ciphertext of the vault at path
func ReadAll(path string) (Blob, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Blob{}, storageErr("read", path, err)
	}
	return ParseBlob(raw)
}

// RewriteAll truncates the vault and writes nonce||ciphertext in one write.
// The file must already exist.
func RewriteAll(path string, blob Blob) error {
	if len(blob.Nonce) != crypto.NonceSize {
		panic(fmt.Sprintf("storage: nonce must be %d bytes, got %d", crypto.NonceSize, len(blob.Nonce)))
	}
	// Assemble before opening so the truncation happens as late as possible
	raw := blob.Bytes()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, FilePermSecure)
	if err != nil {
		return storageErr("open", path, err)
	}

	if _, err := f.Write(raw); err != nil {
		f.Close()
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &StorageError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// Purge removes the vault file and its directory if nothing else is left in it
func Purge(path string) error {
	if err := os.Remove(path); err != nil {
		return storageErr("remove", path, err)
	}
	// Fails harmlessly when the directory still has other entries
	_ = os.Remove(filepath.Dir(path))
	return nil
}

// Size returns the size of the vault file in bytes
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, storageErr("stat", path, err)
	}
	return info.Size(), nil
}
