package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrNoToken = errors.New("no token held")

// TokenStore persists the bearer token across process restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Claims are the token claims the client cares about. The signature is
// the server's to verify; the client only reads expiry and role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Holder owns the bearer credential lifecycle: set on login, cleared on
// logout, validity checked locally before use.
type Holder struct {
	mu    sync.RWMutex
	token string
	store TokenStore
}

// NewHolder creates a Holder backed by store. A previously persisted
// token is picked up so a session survives restarts. store may be nil
// for a purely in-memory holder.
func NewHolder(store TokenStore) *Holder {
	h := &Holder{store: store}
	if store != nil {
		if tok, err := store.Load(); err == nil && tok != "" {
			h.token = tok
		}
	}
	return h
}

// SetToken stores and persists a freshly issued token.
func (h *Holder) SetToken(token string) error {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Save(token); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}
	return nil
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Clear purges the token, both in memory and from the store.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear persisted token: %w", err)
		}
	}
	return nil
}

// Valid reports whether a token is held and its exp claim has not
// passed. The check is local; a token the server has revoked will still
// read valid here and be rejected on first use.
func (h *Holder) Valid() bool {
	claims, err := h.claims()
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().Before(claims.ExpiresAt.Time)
}

// IsAdmin reports whether the held token carries the admin role. Admin
// accounts have no cart, so cart operations are refused for them before
// any request is made.
func (h *Holder) IsAdmin() bool {
	claims, err := h.claims()
	if err != nil {
		return false
	}
	return claims.Role == "admin"
}

// UserID returns the subject claim of the held token, or "".
func (h *Holder) UserID() string {
	claims, err := h.claims()
	if err != nil {
		return ""
	}
	return claims.Subject
}

func (h *Holder) claims() (*Claims, error) {
	tok := h.Token()
	if tok == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	// Unverified parse: the client reads claims, the server verifies.
	_, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// FileStore keeps the token in a single file, the moral equivalent of
// the browser's local storage.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
