package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/onepass/internal/passgen"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Location)
	assert.False(t, cfg.NoKeyring)
	assert.False(t, cfg.NoPrompt)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5, cfg.InterruptAttempts)
	assert.Equal(t, time.Second, cfg.InterruptInterval)
	assert.Equal(t, 30*time.Second, cfg.ClipboardTimeout)
	assert.Equal(t, passgen.DefaultLength, cfg.SuggestLength)
}

func TestLoadRejectsZeroSuggestLength(t *testing.T) {
	t.Setenv("ONEPASS_SUGGEST_LENGTH", "0")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidSuggestConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ONEPASS_LOCATION", "vaults/work.txt")
	t.Setenv("ONEPASS_PASSWORD", "pw")
	t.Setenv("ONEPASS_NO_KEYRING", "true")
	t.Setenv("ONEPASS_NO_PROMPT", "1")
	t.Setenv("ONEPASS_LOG_LEVEL", "debug")
	t.Setenv("ONEPASS_INTERRUPT_ATTEMPTS", "2")
	t.Setenv("ONEPASS_INTERRUPT_INTERVAL", "250ms")
	t.Setenv("ONEPASS_CLIPBOARD_TIMEOUT", "5s")
	t.Setenv("ONEPASS_SUGGEST_LENGTH", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "vaults/work.txt", cfg.Location)
	assert.Equal(t, "pw", cfg.Password)
	assert.True(t, cfg.NoKeyring)
	assert.True(t, cfg.NoPrompt)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.InterruptAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InterruptInterval)
	assert.Equal(t, 5*time.Second, cfg.ClipboardTimeout)
	assert.Equal(t, 20, cfg.SuggestLength)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("ONEPASS_INTERRUPT_INTERVAL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LogLevel:          "warn",
			InterruptAttempts: 5,
			InterruptInterval: time.Second,
			ClipboardTimeout:  time.Second,
			SuggestLength:     14,
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.InterruptInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInterruptConfig)

	cfg = valid()
	cfg.ClipboardTimeout = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidClipboardConfig)

	cfg = valid()
	cfg.SuggestLength = 3
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSuggestConfig)

	cfg = valid()
	cfg.LogLevel = "chatty"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLogLevel)
}

func TestVaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &Config{}
	path, err := cfg.VaultPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".onepass", "main.txt"), path)

	cfg.Location = "env/vault.txt"
	path, err = cfg.VaultPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "env", "vault.txt"), path)

	path, err = cfg.VaultPath("flag/vault.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "flag", "vault.txt"), path)
}
