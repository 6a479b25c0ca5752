package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/passgen"
	"github.com/illarion/onepass/internal/record"
)

// New prompts for a resource and stores it.
// An empty password answer stores a generated one instead.
func New(ctx context.Context, app *App, name string) {
	vault := app.Vault()

	password := app.GetPasswordOrExit(ctx, vault)
	defer crypto.ClearBytes(password)

	// Fail before prompting if the password is wrong
	if err := vault.VerifyPassword(ctx, password); err != nil {
		HandleError(err)
	}

	in := core.NewLineReader(app.State, os.Stdin, os.Stderr)

	var err error
	if name == "" {
		if name, err = in.ReadLine("Name: "); err != nil {
			HandleError(err)
		}
	}
	if err := record.ValidateName(name); err != nil {
		HandleError(err)
	}

	user, err := in.ReadLine("User: ")
	if err != nil {
		HandleError(err)
	}

	secret, err := core.ReadPassword(app.State, "Resource password (empty to generate): ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(secret)

	generated := len(secret) == 0
	if generated {
		suggestion, err := passgen.Suggest(app.Config.SuggestLength)
		if err != nil {
			HandleError(err)
		}
		secret = []byte(suggestion)
	}

	resource := record.Resource{Name: name, User: user, Password: string(secret)}
	if err := vault.Create(ctx, password, resource); err != nil {
		HandleError(err)
	}

	stored := record.Normalize(resource).Name
	if generated {
		fmt.Printf("✓ Created %s with a generated password (use 'onepass get %s' to copy it)\n", stored, stored)
		return
	}
	fmt.Printf("✓ Created %s\n", stored)
}
