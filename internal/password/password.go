// Package password supplies the encryption password to backup and
// restore runs. A provider is asked once per run and may cache; an
// authentication failure clears the cache so the next attempt re-prompts
// instead of failing forever on a mistyped password.
package password

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

// EnvVar is the environment variable consulted before prompting.
const EnvVar = "COFFER_PASSWORD"

// Provider supplies the encryption password.
type Provider interface {
	// GetPassword returns the password, prompting or reading as needed.
	GetPassword() (string, error)

	// ClearPassword drops any cached password. Called after an
	// authentication failure so the next GetPassword starts fresh.
	ClearPassword()
}

// Static is a fixed-password provider for automation and tests.
type Static struct {
	Password string
}

func (s *Static) GetPassword() (string, error) {
	if s.Password == "" {
		return "", cferrors.Configurationf("no password configured")
	}
	return s.Password, nil
}

func (s *Static) ClearPassword() {}

// Terminal prompts on the controlling terminal with echo disabled and
// caches the entered password for the rest of the run. The environment
// variable takes precedence over prompting, so scripted runs never
// block on a TTY.
type Terminal struct {
	// Prompt is the text shown before reading. Defaults to a generic
	// prompt when empty.
	Prompt string

	mu     sync.Mutex
	cached string
}

func (t *Terminal) GetPassword() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cached != "" {
		return t.cached, nil
	}

	if env := os.Getenv(EnvVar); env != "" {
		t.cached = env
		return env, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", cferrors.Configurationf("no password available: set %s or run interactively", EnvVar)
	}

	prompt := t.Prompt
	if prompt == "" {
		prompt = "Encryption password: "
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", cferrors.WrapIO(err, "reading password")
	}
	if len(raw) == 0 {
		return "", cferrors.Configurationf("empty password")
	}

	t.cached = string(raw)
	return t.cached, nil
}

func (t *Terminal) ClearPassword() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cached = ""
}
