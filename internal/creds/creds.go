package creds

import (
	"encoding/json"
	"strings"

	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/keychain"
	"github.com/wyilio/cursor-meter/internal/prompt"
)

// keychainService is the macOS Keychain service name checked as a read-only
// fallback when no credential file exists.
const keychainService = "cursor-meter"

// EnvToken is a read-only override for the stored session token, useful in
// scripts and CI. It is never written to and never cleared on auth failure.
const EnvToken = "CURSOR_METER_SESSION_TOKEN"

// sessionCredentials is the on-disk shape of the stored credential.
// Alternate key names are accepted for files written by other tools.
type sessionCredentials struct {
	SessionToken string `json:"session_token,omitempty"`
	Token        string `json:"token,omitempty"`
}

func (c *sessionCredentials) effectiveToken() string {
	for _, v := range []string{c.SessionToken, c.Token} {
		if v != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Store owns the single session-token credential. The token is an opaque
// bearer secret: it is read on every refresh, deleted on authentication
// failure, and never logged in cleartext.
type Store struct {
	prompter prompt.Prompter
	getenv   func(string) string
}

// NewStore creates a Store that prompts with the given prompter when no
// token is available.
func NewStore(p prompt.Prompter, getenv func(string) string) *Store {
	return &Store{prompter: p, getenv: getenv}
}

// Peek returns the stored token without prompting.
func (s *Store) Peek() (string, bool) {
	if s.getenv != nil {
		if tok := strings.TrimSpace(s.getenv(EnvToken)); tok != "" {
			return tok, true
		}
	}
	data, err := config.ReadCredential(config.SessionCredentialFile())
	if err != nil || data == nil {
		if tok, kerr := keychain.ReadGenericPassword(keychainService, "session"); kerr == nil && tok != "" {
			return tok, true
		}
		return "", false
	}
	var creds sessionCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// Legacy plain-text token file.
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok, true
		}
		return "", false
	}
	if tok := creds.effectiveToken(); tok != "" {
		return tok, true
	}
	return "", false
}

// GetToken returns the session token, prompting interactively when none is
// stored. A cancelled or empty prompt yields absent — a valid outcome every
// caller must handle; there is no retry.
func (s *Store) GetToken() (string, bool) {
	if tok, ok := s.Peek(); ok {
		return tok, true
	}
	return s.promptAndSave()
}

// SetToken always prompts, regardless of any existing value, for explicit
// rotation.
func (s *Store) SetToken() (string, bool) {
	return s.promptAndSave()
}

// ClearToken deletes the stored credential. Invoked on authentication
// failure so the next refresh re-prompts. Returns false when nothing was
// stored.
func (s *Store) ClearToken() bool {
	return config.DeleteCredential(config.SessionCredentialFile())
}

// Save persists a token supplied non-interactively (e.g. as a CLI argument).
func (s *Store) Save(token string) error {
	data, err := json.Marshal(sessionCredentials{SessionToken: token})
	if err != nil {
		return err
	}
	return config.WriteCredential(config.SessionCredentialFile(), data)
}

func (s *Store) promptAndSave() (string, bool) {
	value, err := s.prompter.Input(prompt.InputConfig{
		Title:       "Cursor session token",
		Placeholder: "paste token here",
		Masked:      true,
		Validate:    prompt.ValidateNotEmpty,
	})
	if err != nil {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if err := s.Save(value); err != nil {
		return "", false
	}
	return value, true
}

// Instructions explains where the session token lives in the browser.
const Instructions = "Get your session token from cursor.com:\n" +
	"  1. Open https://cursor.com in your browser\n" +
	"  2. Open DevTools (F12 or Cmd+Option+I)\n" +
	"  3. Go to Application → Cookies → https://cursor.com\n" +
	"  4. Find WorkosCursorSessionToken\n" +
	"  5. Copy its value"
