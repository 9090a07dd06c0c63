package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// CredentialStore persists the last known user and token between runs. A nil
// store is valid; the session then lives only in memory.
type CredentialStore interface {
	Load() (User, string, bool)
	Save(User, string) error
	Clear() error
}

// Session manages the authenticated user in two phases: Hydrate restores the
// locally stored user immediately so callers can render optimistically, then
// Verify confirms it against the server and clears it when the server
// disagrees.
type Session struct {
	client *Client
	store  CredentialStore

	mu   sync.RWMutex
	user *User
}

func NewSession(c *Client, store CredentialStore) *Session {
	return &Session{client: c, store: store}
}

// User returns the current user, which may be stale until Verify runs.
func (s *Session) User() (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// Hydrate restores the stored user without any network call.
func (s *Session) Hydrate() (*User, bool) {
	if s.store == nil {
		return nil, false
	}
	user, token, ok := s.store.Load()
	if !ok {
		return nil, false
	}
	s.client.SetToken(token)
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return &user, true
}

// Verify checks the hydrated session against the server. The server's answer
// replaces the hydrated user and is written back to the store, so the next
// Hydrate starts from fresh data. An unauthorized answer clears local state;
// a connectivity failure keeps the hydrated user, since the server never
// contradicted it.
func (s *Session) Verify(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := s.client.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	if err != nil {
		var connErr *ErrConnectivity
		if errors.As(err, &connErr) {
			return nil, err
		}
		s.clearLocal()
		return nil, err
	}

	s.mu.Lock()
	s.user = &out.User
	s.mu.Unlock()
	if s.store != nil {
		_ = s.store.Save(out.User, s.client.token)
	}
	return &out.User, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}

	s.client.SetToken(out.Token)
	s.mu.Lock()
	s.user = &out.User
	s.mu.Unlock()
	if s.store != nil {
		_ = s.store.Save(out.User, out.Token)
	}
	return &out.User, nil
}

// Logout clears local state regardless of whether the server call succeeds.
func (s *Session) Logout(ctx context.Context) {
	_ = s.client.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	s.clearLocal()
}

func (s *Session) clearLocal() {
	s.client.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if s.store != nil {
		_ = s.store.Clear()
	}
}
