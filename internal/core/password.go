package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/onepass/internal/crypto"
	"github.com/illarion/onepass/internal/guard"
	"golang.org/x/term"
)

// ValidatePassword checks a new master password: non-empty, no whitespace
func ValidatePassword(password []byte) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}
	if bytes.ContainsAny(password, " \t\r\n") {
		return fmt.Errorf("%w: password must not contain whitespace", ErrInvalidInput)
	}
	return nil
}

// ReadPassword reads a password from the terminal without echoing.
// The input flag on state stays raised while echo is off, and state knows
// how to turn echo back on if a signal ends the process mid-prompt.
func ReadPassword(state *guard.State, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if old, err := term.GetState(fd); err == nil {
		state.SetRestore(func() { _ = term.Restore(fd, old) })
		defer state.SetRestore(nil)
	}

	state.BeginInput()
	password, err := term.ReadPassword(fd)
	state.EndInput()
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(state *guard.State) ([]byte, error) {
	password1, err := ReadPassword(state, "Enter password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword(state, "Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// LineReader reads prompted lines of visible input
type LineReader struct {
	state *guard.State
	in    *bufio.Reader
	out   io.Writer
}

// NewLineReader wraps in; prompts go to out
func NewLineReader(state *guard.State, in io.Reader, out io.Writer) *LineReader {
	return &LineReader{state: state, in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns one line without its line ending
func (r *LineReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	r.state.BeginInput()
	line, err := r.in.ReadString('\n')
	r.state.EndInput()

	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
