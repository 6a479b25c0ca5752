// Package security resolves where the vault lives.
//
// The vault defaults to ~/.onepass/main.txt. A relative override is joined
// to the home directory and validated with filepath.IsLocal plus a
// filepath.Rel containment check, so "../" cannot move it out of home.
package security
