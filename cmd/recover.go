package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/crypto"
)

// Recover restores the vault from the newest journal snapshot
func Recover(ctx context.Context, app *App) {
	vault := app.Vault()

	// The vault file may be unreadable, so the password is not verified against it
	password, err := app.GetPasswordForRecover(vault)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	result, err := vault.Recover(ctx, password)
	if err != nil {
		HandleError(err)
	}

	source := "last committed write"
	if result.FromPending {
		source = "interrupted write"
	}
	fmt.Printf("✓ Restored %d resources from the %s\n", result.Records, source)
}

// GetPasswordForRecover reads the password without checking it against the vault file
func (a *App) GetPasswordForRecover(vault *core.Vault) ([]byte, error) {
	password, _, err := a.getPassword(vault, "Enter password: ")
	return password, err
}
