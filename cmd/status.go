package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/onepass/internal/keyring"
)

// Status shows the state of the vault and its journal (no password required)
func Status(ctx context.Context, app *App) {
	vault := app.Vault()

	status, err := vault.Status(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Vault:     %s\n", status.Path)
	switch {
	case !status.Exists:
		fmt.Println("  state:   missing")
	case status.Truncated:
		fmt.Printf("  state:   truncated (%s)\n", formatSize(status.Size))
	default:
		fmt.Printf("  state:   present (%s)\n", formatSize(status.Size))
	}
	fmt.Printf("  cipher:  %s\n", status.Algorithm)

	fmt.Printf("\nJournal:   %s\n", status.JournalPath)
	if !status.HasJournal {
		fmt.Println("  state:   missing")
	} else {
		if status.VaultID != "" {
			fmt.Printf("  vault id: %s\n", status.VaultID)
		}
		if !status.Created.IsZero() {
			fmt.Printf("  created:  %s\n", status.Created.Format(time.RFC3339))
		}
		if !status.Modified.IsZero() {
			fmt.Printf("  modified: %s\n", status.Modified.Format(time.RFC3339))
		}
		fmt.Printf("  snapshot: %t\n", status.HasSnapshot)
		if status.Pending {
			fmt.Println("  pending:  interrupted write, run 'onepass diff' and 'onepass recover'")
		}
	}

	if status.VaultID != "" && !app.Config.NoKeyring {
		if keyring.HasPassword(status.VaultID) {
			fmt.Println("\nPassword: stored in keyring")
		} else {
			fmt.Println("\nPassword: not stored")
		}
	}

	if !status.Exists || status.Truncated {
		fmt.Println("\nRun 'onepass recover' to restore the vault from its journal")
	}
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
