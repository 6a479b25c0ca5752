package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/onepass/internal/core"
	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/keyring"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave(ctx context.Context, app *App) {
	vault := app.Vault()

	// Prompt for password
	password, err := core.ReadPassword(app.State, "Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if err := vault.VerifyPassword(ctx, password); err != nil {
		HandleError(err)
	}

	// Get vault ID (create if not exists)
	vaultID, err := vault.GetOrCreateVaultID()
	if err != nil {
		HandleError(err)
	}

	// Save to keyring
	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(app *App) {
	vaultID, err := app.Vault().GetVaultID()
	if err != nil || vaultID == "" {
		fmt.Println("No password stored in keyring")
		return
	}

	if !keyring.HasPassword(vaultID) {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to remove from keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(app *App) {
	vaultID, err := app.Vault().GetVaultID()
	if err != nil || vaultID == "" {
		fmt.Println("Password: not stored")
		return
	}

	_, err = keyring.GetPassword(vaultID)
	switch {
	case err == nil:
		fmt.Println("Password: stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("Password: not stored")
	default:
		fmt.Printf("Password: keyring unavailable (%s)\n", err)
	}
}
