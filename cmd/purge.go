package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/keyring"
)

// Purge deletes the vault, its journal and any keyring entry.
// Without force the operator must type the vault file name to confirm.
func Purge(ctx context.Context, app *App, force bool) {
	vault := app.Vault()

	if !force {
		fmt.Fprintf(os.Stderr, "This permanently deletes %s and its journal.\n", vault.Path())
		in := core.NewLineReader(app.State, os.Stdin, os.Stderr)
		answer, err := in.ReadLine("Type 'purge' to confirm: ")
		if err != nil {
			HandleError(err)
		}
		if strings.TrimSpace(answer) != "purge" {
			fmt.Println("Aborted")
			return
		}
	}

	// Read the ID before the journal holding it is removed
	vaultID, _ := vault.GetVaultID()

	if err := vault.Purge(ctx); err != nil {
		HandleError(err)
	}

	if vaultID != "" {
		if err := keyring.DeletePassword(vaultID); err != nil {
			app.Log.Warn().Err(err).Msg("failed to remove keyring entry")
		}
	}

	fmt.Println("✓ Vault purged")
}
