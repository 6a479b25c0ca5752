package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"github.com/illarion/onepass/internal/crypto"
)

// Get copies a resource password to the clipboard, or prints it with show.
// The clipboard is cleared on Enter, after the configured timeout, or on interrupt.
func Get(ctx context.Context, app *App, name string, show bool) {
	vault := app.Vault()

	password := app.GetPasswordOrExit(ctx, vault)
	defer crypto.ClearBytes(password)

	resource, err := vault.Get(ctx, password, name)
	if err != nil {
		HandleError(err)
	}

	if show || clipboard.Unsupported {
		if !show {
			app.Log.Warn().Msg("no clipboard available, printing password")
		}
		fmt.Printf("user: %s\n", resource.User)
		fmt.Printf("password: %s\n", resource.Password)
		return
	}

	if err := clipboard.WriteAll(resource.Password); err != nil {
		HandleError(fmt.Errorf("failed to copy to clipboard: %w", err))
	}

	fmt.Printf("user: %s\n", resource.User)
	fmt.Printf("Password copied to clipboard. Press Enter to clear it (cleared automatically in %s)\n", app.Config.ClipboardTimeout)

	// Holding the operation flag makes an interrupt wait for the clear below
	app.State.BeginOperation()
	defer app.State.EndOperation()

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()

	timer := time.NewTimer(app.Config.ClipboardTimeout)
	defer timer.Stop()

	select {
	case <-enter:
	case <-timer.C:
	case <-ctx.Done():
	}

	clearClipboard(app, resource.Password)
	fmt.Println("Clipboard cleared")
}

// clearClipboard empties the clipboard unless something else was copied meanwhile
func clearClipboard(app *App, secret string) {
	current, err := clipboard.ReadAll()
	if err == nil && current != secret {
		app.Log.Debug().Msg("clipboard changed, leaving it alone")
		return
	}
	if err := clipboard.WriteAll(""); err != nil {
		app.Log.Warn().Err(err).Msg("failed to clear clipboard")
	}
}
