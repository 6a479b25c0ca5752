package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/record"
)

// Update changes one field of a resource. A missing value is prompted for;
// password values are read without echo.
func Update(ctx context.Context, app *App, name, fieldName string, value *string) {
	field, err := record.ParseField(fieldName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Field must be one of: name, user, password\n")
		os.Exit(1)
	}

	vault := app.Vault()

	password := app.GetPasswordOrExit(ctx, vault)
	defer crypto.ClearBytes(password)

	if value == nil {
		var v string
		if field == record.FieldPassword {
			secret, err := core.ReadPassword(app.State, "New password: ")
			if err != nil {
				HandleError(err)
			}
			v = string(secret)
			crypto.ClearBytes(secret)
		} else {
			in := core.NewLineReader(app.State, os.Stdin, os.Stderr)
			if v, err = in.ReadLine(fmt.Sprintf("New %s: ", field)); err != nil {
				HandleError(err)
			}
		}
		value = &v
	}

	if err := vault.Update(ctx, password, name, field, *value); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Updated %s of %s\n", field, name)
}
