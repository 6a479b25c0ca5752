package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/onepass/internal/crypto"
)

// Delete removes a resource from the vault
func Delete(ctx context.Context, app *App, name string) {
	vault := app.Vault()

	password := app.GetPasswordOrExit(ctx, vault)
	defer crypto.ClearBytes(password)

	if err := vault.Delete(ctx, password, name); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Deleted %s\n", name)
}
