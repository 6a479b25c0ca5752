package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/onepass/internal/crypto"
)

// Diff compares the vault with the journal snapshot that recover would restore
func Diff(ctx context.Context, app *App) {
	vault := app.Vault()

	password, err := app.GetPasswordForRecover(vault)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	diff, err := vault.Diff(ctx, password)
	if err != nil {
		HandleError(err)
	}

	if diff == "" {
		fmt.Println("Vault matches its journal")
		return
	}
	fmt.Print(diff)
}
