// Package session persists the CLI login between invocations. The session
// is an explicit value handed to every command; nothing is kept in
// package state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is what a successful login leaves behind.
type Session struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserName  string `json:"username"`
}

// LoggedIn reports whether s carries a credential.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// Load reads the session stored at path. A missing file yields an empty
// session and no error.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return s, nil
}

// Save writes s to path, creating the parent directory. The file holds a
// bearer token, so it is readable by the owner only.
func Save(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session at path. Clearing a missing session is not an
// error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
