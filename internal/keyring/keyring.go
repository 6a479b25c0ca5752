// Package keyring caches the master password in the OS keyring, keyed by vault ID.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "onepass"

// ErrNotFound is returned by GetPassword when no password is stored for a vault.
// Any other error means the keyring itself could not be reached.
var ErrNotFound = keyring.ErrNotFound

// SavePassword stores a password in the OS keyring
func SavePassword(vaultID string, password string) error {
	return keyring.Set(serviceName, vaultID, password)
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(vaultID string) (string, error) {
	return keyring.Get(serviceName, vaultID)
}

// DeletePassword removes a password from the OS keyring.
// A missing entry is not an error.
func DeletePassword(vaultID string) error {
	err := keyring.Delete(serviceName, vaultID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}
