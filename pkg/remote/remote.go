// Package remote defines the contract of the backend-as-a-service collaborator:
// password auth with a session-change subscription, and table-style queries.
//
// Two implementations live in subpackages: rest (GoTrue + PostgREST over HTTP)
// and sqlstore (direct database access through gorm).
package remote

import (
	"context"
	"time"
)

// Client is the remote data client used by the store and the services
type Client interface {
	Auth() Auth
	From(table string) *Query
}

// Auth covers the authentication surface the application relies on
type Auth interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnAuthStateChange registers fn for session changes until the subscription is released.
	OnAuthStateChange(fn AuthChangeFunc) *Subscription
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
}

// User is the provider's user handle
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	CreatedAt    time.Time              `json:"created_at"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Session is an authenticated session as issued by the provider
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// IsExpired checks if the access token is expired
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// IsValid checks if the session can be used for requests
func (s *Session) IsValid() bool {
	return s != nil && s.AccessToken != "" && s.User != nil && !s.IsExpired()
}

// SessionStore persists the current session between process runs
type SessionStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Delete() error
}

// MemorySessionStore keeps the session in memory only
type MemorySessionStore struct {
	session *Session
}

func (m *MemorySessionStore) Load() (*Session, error) { return m.session, nil }

func (m *MemorySessionStore) Save(s *Session) error {
	m.session = s
	return nil
}

func (m *MemorySessionStore) Delete() error {
	m.session = nil
	return nil
}
