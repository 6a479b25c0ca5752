// Package core provides the onepass vault operations.
//
// A vault is one file holding a nonce followed by the ChaCha20-Poly1305
// ciphertext of every resource record. Each operation reads and decrypts the
// whole file; mutating operations then rewrite it in full under a fresh nonce:
//   - Init: Create an empty vault
//   - List, Get: Read resources
//   - Create, Update, Delete: Change one resource and rewrite the vault
//
// Every rewrite is staged in a bbolt journal next to the vault before the
// file is truncated, so an interrupted write can be restored with Recover.
// Diff shows what Recover would change.
package core
