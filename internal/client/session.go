package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/sprintsync/internal/models"
)

// SessionState is what a TokenStore persists between runs.
type SessionState struct {
	AccessToken string `yaml:"access_token"`
	TokenType   string `yaml:"token_type"`
	UserID      string `yaml:"user_id"`
	Email       string `yaml:"email"`
	FullName    string `yaml:"full_name"`
	IsAdmin     bool   `yaml:"is_admin"`
}

type TokenStore interface {
	// Load returns nil state and nil error when nothing is stored.
	Load() (*SessionState, error)
	Save(state *SessionState) error
	Clear() error
}

type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultSessionPath is sprintsync/session.yaml under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "sprintsync", "session.yaml"), nil
}

func (s *FileTokenStore) Load() (*SessionState, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	state := new(SessionState)
	err = yaml.Unmarshal(raw, state)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return state, nil
}

func (s *FileTokenStore) Save(state *SessionState) error {
	raw, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0o700)
	if err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	err = os.WriteFile(s.path, raw, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

type MemoryTokenStore struct {
	mu    sync.Mutex
	state *SessionState
}

func (s *MemoryTokenStore) Load() (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, nil
	}
	state := *s.state
	return &state, nil
}

func (s *MemoryTokenStore) Save(state *SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.state = &copied
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

// Session holds the bearer token and the signed-in user. It is safe for
// concurrent use.
type Session struct {
	mu    sync.RWMutex
	store TokenStore
	state *SessionState
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = new(MemoryTokenStore)
	}
	return &Session{store: store}
}

// Init restores a previously saved session, if any.
func (s *Session) Init() error {
	state, err := s.store.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Teardown forgets the session in memory and in the store.
func (s *Session) Teardown() error {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) set(token string, user *models.User) error {
	state := &SessionState{
		AccessToken: token,
		TokenType:   "bearer",
	}
	if user != nil {
		state.UserID = user.ID
		state.Email = user.Email
		state.FullName = user.FullName
		state.IsAdmin = user.IsAdmin
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return s.store.Save(state)
}

func (s *Session) setToken(token string) error {
	s.mu.Lock()
	if s.state == nil {
		s.state = &SessionState{TokenType: "bearer"}
	}
	s.state.AccessToken = token
	state := *s.state
	s.mu.Unlock()
	return s.store.Save(&state)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return ""
	}
	return s.state.AccessToken
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns the cached identity of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil || s.state.UserID == "" {
		return nil
	}
	return &models.User{
		ID:       s.state.UserID,
		Email:    s.state.Email,
		FullName: s.state.FullName,
		IsAdmin:  s.state.IsAdmin,
	}
}
