package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/onepass/internal/config"
	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/guard"
	"github.com/illarion/onepass/internal/keyring"
	"github.com/illarion/onepass/internal/logger"
	"github.com/illarion/onepass/internal/record"
	"github.com/illarion/onepass/internal/security"
)

// App carries what every command needs
type App struct {
	Config *config.Config
	Log    *logger.Logger
	State  *guard.State
	Path   string
}

// Vault opens the vault at the resolved location
func (a *App) Vault() *core.Vault {
	return core.New(a.Path, a.State, a.Log.GetChildLogger("core"))
}

type passwordSource int

const (
	sourceEnv passwordSource = iota
	sourceKeyring
	sourcePrompt
)

// getPassword retrieves password from environment, keyring or prompts user.
// The caller is responsible for calling crypto.ClearBytes on the returned password
func (a *App) getPassword(vault *core.Vault, prompt string) ([]byte, passwordSource, error) {
	// Try environment variable first
	if a.Config.Password != "" {
		return []byte(a.Config.Password), sourceEnv, nil
	}

	if !a.Config.NoKeyring {
		if vaultID, err := vault.GetVaultID(); err == nil && vaultID != "" {
			stored, err := keyring.GetPassword(vaultID)
			switch {
			case err == nil:
				a.Log.Debug().Msg("using password from keyring")
				return []byte(stored), sourceKeyring, nil
			case !errors.Is(err, keyring.ErrNotFound):
				a.Log.Warn().Err(err).Msg("keyring unavailable")
			}
		}
	}

	if a.Config.NoPrompt {
		return nil, sourcePrompt, core.ErrPasswordRequired
	}

	// Prompt user
	password, err := core.ReadPassword(a.State, prompt)
	if err != nil {
		return nil, sourcePrompt, err
	}
	return password, sourcePrompt, nil
}

// GetPasswordWithRetry is like getPassword but falls back to the prompt
// when the keyring holds a password the vault no longer accepts
func (a *App) GetPasswordWithRetry(ctx context.Context, vault *core.Vault, prompt string) ([]byte, error) {
	password, source, err := a.getPassword(vault, prompt)
	if err != nil {
		return nil, err
	}
	if source != sourceKeyring {
		return password, nil
	}

	if err := vault.VerifyPassword(ctx, password); errors.Is(err, core.ErrWrongPassword) {
		crypto.ClearBytes(password)
		a.Log.Warn().Msg("keyring password is stale, run 'onepass keyring save' to update it")
		if a.Config.NoPrompt {
			return nil, core.ErrPasswordRequired
		}
		return core.ReadPassword(a.State, prompt)
	}
	return password, nil
}

// GetPasswordOrExit is like GetPasswordWithRetry but exits on error
func (a *App) GetPasswordOrExit(ctx context.Context, vault *core.Vault) []byte {
	password, err := a.GetPasswordWithRetry(ctx, vault, "Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return password
}

// GetPasswordForInit retrieves password for init command
// Checks environment variable first, then prompts with confirmation
func (a *App) GetPasswordForInit() ([]byte, error) {
	if a.Config.Password != "" {
		return []byte(a.Config.Password), nil
	}

	// Fall back to confirmation prompt
	return core.ReadPasswordConfirm(a.State)
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Interrupted\n")
		os.Exit(guard.ExitInterrupted)
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: vault not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'onepass init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: vault already exists\n")
		fmt.Fprintf(os.Stderr, "Use 'onepass status' to see current state\n")
	case errors.Is(err, core.ErrSnapshotPending):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Run 'onepass recover' to restore it, or 'onepass purge' to start over\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, core.ErrTruncated), errors.Is(err, core.ErrMalformedRecord):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Run 'onepass diff' to inspect and 'onepass recover' to restore the last good copy\n")
	case errors.Is(err, core.ErrNoSnapshot):
		fmt.Fprintf(os.Stderr, "Error: no journal snapshot to recover from\n")
	case errors.Is(err, record.ErrReserved):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "%q and %q are reserved and can not be stored\n", record.Marker, record.ReservedNonce)
	case errors.Is(err, security.ErrPathEscapes):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Vault location must stay inside your home directory\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
