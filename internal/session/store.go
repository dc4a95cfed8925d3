// Package session persists the authenticated (token, user) pair between
// launches. The store is injected so the auth controller never touches
// durable storage directly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"

	"gitpilot/internal/models"
)

const (
	keyringService = "gitpilot"
	keyringUser    = "access-token"
	profileFile    = "profile.json"
)

// Store loads, saves and clears the persisted session. Load returns
// (nil, nil) when no session is stored; absence is not an error.
type Store interface {
	Load() (*models.Session, error)
	Save(s *models.Session) error
	Clear() error
}

// KeyringStore keeps the access token in the OS keyring under fixed
// service/key names and the serialized user profile as JSON in the
// user config directory.
type KeyringStore struct {
	configDir string
}

// NewKeyringStore resolves the app config directory, creating it if
// needed.
func NewKeyringStore() (*KeyringStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	appDir := filepath.Join(configDir, "gitpilot")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &KeyringStore{configDir: appDir}, nil
}

// newKeyringStoreAt pins the profile directory; used by tests together
// with the keyring mock.
func newKeyringStoreAt(dir string) *KeyringStore {
	return &KeyringStore{configDir: dir}
}

func (s *KeyringStore) profilePath() string {
	return filepath.Join(s.configDir, profileFile)
}

func (s *KeyringStore) Load() (*models.Session, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token from keyring: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	sess := &models.Session{AccessToken: token}
	data, err := os.ReadFile(s.profilePath())
	if os.IsNotExist(err) {
		// Token without a profile is still a session; bootstrap
		// validation refreshes the profile from the server.
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(data, &sess.User); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return sess, nil
}

func (s *KeyringStore) Save(sess *models.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return errors.New("session with access token is required")
	}
	if err := keyring.Set(keyringService, keyringUser, sess.AccessToken); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	data, err := json.MarshalIndent(sess.User, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(s.profilePath(), data, 0600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	if err := os.Remove(s.profilePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove profile: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	sess *models.Session

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.sess == nil {
		return nil, nil
	}
	copied := *m.sess
	return &copied, nil
}

func (m *MemoryStore) Save(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if s == nil || s.AccessToken == "" {
		return errors.New("session with access token is required")
	}
	copied := *s
	m.sess = &copied
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	return nil
}
