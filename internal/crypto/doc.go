// Package crypto provides cryptographic operations for onepass.
//
// Encryption uses ChaCha20-Poly1305 with:
//   - 32-byte key derived from the master password via SHA-256
//   - 12-byte nonce supplied by the caller, fresh for every vault write
//   - Authenticated encryption: a wrong key and tampered data both fail closed
//
// The key derivation is a plain hash with no salt or work factor. It is
// fixed by the on-disk format, which carries nothing but nonce and
// ciphertext.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto
