package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T, password string) *Encryptor {
	t.Helper()
	enc, err := NewEncryptor(DeriveKey([]byte(password)))
	require.NoError(t, err)
	return enc
}

func TestDeriveKey(t *testing.T) {
	k1 := DeriveKey([]byte("masterPassword"))
	k2 := DeriveKey([]byte("masterPassword"))
	k3 := DeriveKey([]byte("masterPassword2"))

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2, "derivation must be deterministic")
	assert.NotEqual(t, k1, k3)
}

func TestEncryptDecrypt(t *testing.T) {
	enc := newTestEncryptor(t, "masterPassword")
	defer enc.Destroy()

	nonce, err := GenerateNonce()
	require.NoError(t, err)

	for _, content := range []string{
		"",
		"content\ndelimiter\nsecret-stuff",
		"resource\ntwitter\nu@x.com\np\n",
	} {
		ct := enc.Encrypt(nonce, []byte(content))
		assert.Len(t, ct, len(content)+TagSize)

		pt, err := enc.Decrypt(nonce, ct)
		require.NoError(t, err)
		assert.Equal(t, content, string(pt))
	}
}

func TestDecryptWrongKey(t *testing.T) {
	enc1 := newTestEncryptor(t, "first")
	enc2 := newTestEncryptor(t, "second")

	nonce, err := GenerateNonce()
	require.NoError(t, err)

	ct := enc1.Encrypt(nonce, []byte("resource\nname\nuser\npass\n"))
	pt, err := enc2.Decrypt(nonce, ct)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Nil(t, pt)
}

func TestDecryptTampered(t *testing.T) {
	enc := newTestEncryptor(t, "pw")
	nonce, err := GenerateNonce()
	require.NoError(t, err)

	ct := enc.Encrypt(nonce, []byte("secret"))
	ct[0] ^= 0xff

	_, err = enc.Decrypt(nonce, ct)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = enc.Decrypt(nonce, []byte("short"))
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestNonceLengthPanics(t *testing.T) {
	enc := newTestEncryptor(t, "pw")

	assert.Panics(t, func() { enc.Encrypt(make([]byte, 24), []byte("x")) })
	assert.Panics(t, func() { _, _ = enc.Decrypt(make([]byte, 8), []byte("x")) })
}

func TestNewEncryptorInvalidKey(t *testing.T) {
	_, err := NewEncryptor([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestGenerateNonceIsFresh(t *testing.T) {
	a, err := GenerateNonce()
	require.NoError(t, err)
	b, err := GenerateNonce()
	require.NoError(t, err)

	assert.Len(t, a, NonceSize)
	assert.False(t, bytes.Equal(a, b))
}

func TestDestroyClearsKey(t *testing.T) {
	key := DeriveKey([]byte("pw"))
	enc, err := NewEncryptor(key)
	require.NoError(t, err)

	enc.Destroy()
	assert.Equal(t, make([]byte, KeySize), key)
}
