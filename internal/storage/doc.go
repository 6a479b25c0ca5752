// Package storage provides the on-disk layer for onepass.
//
// The vault file (file.go) is exactly nonce || ciphertext:
//   - bytes 0..11: ChaCha20-Poly1305 nonce, fresh for every write
//   - bytes 12..end: ciphertext of the plaintext record stream
//
// There is no header and no length prefix. The file is only ever rewritten
// whole, with a single sequential write after the new content is fully built.
//
// The journal (journal.go) is a BBolt database next to the vault with two buckets:
//   - config: vault ID (keyring account), created and modified timestamps
//   - journal: the blob staged before a rewrite, and the blob last committed
//
// A kill between truncating the vault and finishing the write leaves the
// vault short, but the staged blob survives in the journal and can be
// written back. The journal stores ciphertext only.
package storage
