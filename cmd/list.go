package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/onepass/internal/crypto"
)

// List prints resource names in stored order
func List(ctx context.Context, app *App) {
	vault := app.Vault()

	password := app.GetPasswordOrExit(ctx, vault)
	defer crypto.ClearBytes(password)

	names, err := vault.List(ctx, password)
	if err != nil {
		HandleError(err)
	}

	for _, name := range names {
		fmt.Println(name)
	}
}
