package cmd

import (
	"fmt"

	"github.com/illarion/onepass/internal/passgen"
)

// Suggest prints a random password. It does not touch the vault.
func Suggest(app *App, length int) {
	if length <= 0 {
		length = app.Config.SuggestLength
	}

	password, err := passgen.Suggest(length)
	if err != nil {
		HandleError(err)
	}
	fmt.Println(password)
}
