package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the journal to reclaim unused space
func Compact(ctx context.Context, app *App) {
	vault := app.Vault()

	// Get file size before
	info, err := os.Stat(vault.JournalPath())
	if err != nil {
		HandleError(fmt.Errorf("no journal at %s", vault.JournalPath()))
	}
	sizeBefore := info.Size()

	if err := vault.Compact(ctx); err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(vault.JournalPath())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
