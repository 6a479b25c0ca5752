package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/security"
)

// Init creates a new empty vault
func Init(ctx context.Context, app *App) {
	if err := security.CheckVaultTarget(app.Path); err != nil {
		HandleError(err)
	}

	vault := app.Vault()

	// Read password (env var or prompt with confirmation)
	password, err := app.GetPasswordForInit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if err := vault.Init(ctx, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Initialized vault at %s\n", vault.Path())
}
