// Package session persists the in-progress wizard session across process
// boundaries.
//
// Discord's OAuth consent screen is an external redirect: nothing held in
// memory survives the round trip, so the session token, authenticated
// user, and selected guild are written to small state files the moment
// they change and hydrated back when the wizard starts again.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"emberctl/internal/api"
)

// State file names under the store directory. Each field is persisted
// independently; a write of one never touches the others.
const (
	fileToken = "session-token"
	fileUser  = "discord-user.json"
	fileGuild = "guild-id"
	fileGrant = "reset-grant"
)

// Session is the client-local wizard session. Once SessionToken is set it
// is only cleared on wizard completion or abandonment.
type Session struct {
	SessionToken    string
	User            *api.DiscordUser
	SelectedGuildID string
}

// HasToken reports whether an OAuth exchange has populated the session.
func (s *Session) HasToken() bool {
	return s != nil && s.SessionToken != ""
}

// Store reads and writes session state files.
type Store struct {
	// Dir is the state directory.
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Hydrate reads the persisted session. Missing keys, a literal
// "undefined" value, and an unparsable user record all hydrate as absent
// rather than failing: stale or corrupted entries must not brick the
// wizard.
func (s *Store) Hydrate() *Session {
	sess := &Session{}

	if v, ok := s.readKey(fileToken); ok {
		sess.SessionToken = v
	}

	if v, ok := s.readKey(fileUser); ok {
		var user api.DiscordUser
		if err := json.Unmarshal([]byte(v), &user); err == nil {
			sess.User = &user
		}
	}

	if v, ok := s.readKey(fileGuild); ok {
		sess.SelectedGuildID = v
	}

	return sess
}

// Persist writes all three session fields. Each field is written (or
// removed, when empty) independently and synchronously.
func (s *Store) Persist(sess *Session) error {
	if err := s.writeKey(fileToken, sess.SessionToken); err != nil {
		return err
	}

	userJSON := ""
	if sess.User != nil {
		data, err := json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("failed to encode user record: %w", err)
		}
		userJSON = string(data)
	}
	if err := s.writeKey(fileUser, userJSON); err != nil {
		return err
	}

	return s.writeKey(fileGuild, sess.SelectedGuildID)
}

// Clear removes the three session keys. Called only on terminal-step
// transition or when a reset grant re-opens the wizard. The reset grant
// itself is not touched.
func (s *Store) Clear() error {
	for _, name := range []string{fileToken, fileUser, fileGuild} {
		if err := s.removeKey(name); err != nil {
			return err
		}
	}
	return nil
}

// GrantReset records the one-time re-entry grant issued after a reset.
func (s *Store) GrantReset() error {
	return s.writeKey(fileGrant, "1")
}

// HasResetGrant reports whether a reset grant is pending, without
// consuming it.
func (s *Store) HasResetGrant() bool {
	_, ok := s.readKey(fileGrant)
	return ok
}

// TakeResetGrant consumes the reset grant. It reports whether a grant was
// present; after a true return the grant is gone.
func (s *Store) TakeResetGrant() bool {
	if !s.HasResetGrant() {
		return false
	}
	if err := s.removeKey(fileGrant); err != nil {
		return false
	}
	return true
}

// readKey reads one state file. The literal string "undefined" is a
// stale artifact of serializing an absent value and is treated as absent.
func (s *Store) readKey(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", false
	}

	v := string(data)
	if v == "" || v == "undefined" {
		return "", false
	}
	return v, true
}

// writeKey writes one state file, or removes it when the value is empty.
func (s *Store) writeKey(name, value string) error {
	if value == "" {
		return s.removeKey(name)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// removeKey deletes one state file, tolerating absence.
func (s *Store) removeKey(name string) error {
	path := filepath.Join(s.Dir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// DefaultDir returns the default state directory for the wizard session.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "emberctl"), nil
}
