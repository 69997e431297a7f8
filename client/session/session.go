// Package session keeps the operator's login on disk between CLI runs and
// decides which pages the current role may open.
//
// The stored role is a cached claim. The server re-checks the token when it
// enforces authorization; the client uses the role only to hide pages.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cctv-surveillance-reports/be/vocab"
)

// Session is the persisted login state.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
	Token         string `json:"token,omitempty"`
}

func (s Session) IsAdmin() bool { return s.Authenticated && s.Role == vocab.RoleAdmin }

// Route names a client page.
type Route string

const (
	RouteLogin          Route = "login"
	RouteActivityForm   Route = "activities-form"
	RouteActivityReport Route = "activities-report"
	RouteStatusForm     Route = "status-form"
	RouteStatusReport   Route = "status-report"
	RouteAddUser        Route = "add-user"
	RouteChangePassword Route = "change-password"
)

// VisibleRoutes lists the pages s may open, in menu order.
func (s Session) VisibleRoutes() []Route {
	if !s.Authenticated {
		return []Route{RouteLogin}
	}
	routes := []Route{RouteActivityForm, RouteActivityReport, RouteStatusForm, RouteStatusReport}
	if s.IsAdmin() {
		routes = append(routes, RouteAddUser, RouteChangePassword)
	}
	return routes
}

// CanAccess reports whether r is among s's visible routes.
func (s Session) CanAccess(r Route) bool {
	for _, v := range s.VisibleRoutes() {
		if v == r {
			return true
		}
	}
	return false
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// DefaultPath is <user config dir>/cctv-reports/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "cctv-reports", "session.json"), nil
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored session, or an unauthenticated one if none exists.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", s.path, err)
	}
	return sess, nil
}

// Save writes sess readable only by the current user.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
