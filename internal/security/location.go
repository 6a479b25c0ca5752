package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultDirName  = ".onepass"
	DefaultFileName = "main.txt"
)

var (
	ErrPathEscapes = errors.New("path escapes home directory")
	ErrNoHome      = errors.New("home directory not found")
)

// DefaultLocation returns the vault path under home when no override is given
func DefaultLocation(home string) string {
	return filepath.Join(home, DefaultDirName, DefaultFileName)
}

// ResolveLocation returns the vault path for an optional user override.
// An empty override yields the default location. A relative override is
// resolved under home and must stay inside it; an absolute override is used
// as given after cleaning.
func ResolveLocation(home, location string) (string, error) {
	location = strings.TrimSpace(location)

	if location == "" {
		if home == "" {
			return "", ErrNoHome
		}
		return DefaultLocation(home), nil
	}

	if filepath.IsAbs(location) {
		return filepath.Clean(location), nil
	}

	if home == "" {
		return "", ErrNoHome
	}

	// filepath.IsLocal rejects "..", empty, and reserved names
	cleanPath := filepath.Clean(location)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, location)
	}

	absPath := filepath.Join(home, cleanPath)

	relPath, err := filepath.Rel(home, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, location)
	}

	return absPath, nil
}

// ResolveFromEnv resolves the location against the current user's home directory
func ResolveFromEnv(location string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil && !filepath.IsAbs(strings.TrimSpace(location)) {
		return "", fmt.Errorf("%w: %v", ErrNoHome, err)
	}
	return ResolveLocation(home, location)
}

// CheckVaultTarget rejects a resolved vault path that is a directory
func CheckVaultTarget(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("vault location %s is a directory", path)
	}
	return nil
}
