package remotetest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

type account struct {
	user     remote.User
	password string
}

// Auth is an in-memory password auth provider
type Auth struct {
	remote.Broadcaster

	mu         sync.Mutex
	users      map[string]account // by email
	session    *remote.Session
	signOutErr error
}

// AddUser registers an account and returns its user
func (a *Auth) AddUser(email, password string) *remote.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := remote.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	a.users[email] = account{user: u, password: password}
	return &u
}

// SetSession installs a session for user without emitting an event
func (a *Auth) SetSession(user *remote.User) *remote.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = newSession(user)
	return a.session
}

// FailSignOut makes SignOut return err; nil restores success
func (a *Auth) FailSignOut(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOutErr = err
}

// Emit forwards an auth event to subscribers
func (a *Auth) Emit(event remote.AuthEvent, session *remote.Session) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	a.Broadcaster.Emit(event, session)
}

func (a *Auth) GetSession(ctx context.Context) (*remote.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, nil
}

func (a *Auth) OnAuthStateChange(fn remote.AuthChangeFunc) *remote.Subscription {
	return a.Subscribe(fn)
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	a.mu.Lock()
	acct, ok := a.users[email]
	if !ok || acct.password != password {
		a.mu.Unlock()
		return nil, &remote.Error{Code: remote.CodeInvalidGrant, Message: "Invalid login credentials", Status: http.StatusBadRequest}
	}
	u := acct.user
	a.session = newSession(&u)
	s := a.session
	a.mu.Unlock()

	a.Broadcaster.Emit(remote.EventSignedIn, s)
	return s, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (*remote.Session, error) {
	a.mu.Lock()
	if _, exists := a.users[email]; exists {
		a.mu.Unlock()
		return nil, &remote.Error{Code: "user_already_exists", Message: "User already registered", Status: http.StatusUnprocessableEntity}
	}
	a.mu.Unlock()

	a.AddUser(email, password)
	return a.SignInWithPassword(ctx, email, password)
}

func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	if a.signOutErr != nil {
		err := a.signOutErr
		a.mu.Unlock()
		return err
	}
	a.session = nil
	a.mu.Unlock()

	a.Broadcaster.Emit(remote.EventSignedOut, nil)
	return nil
}

func newSession(user *remote.User) *remote.Session {
	return &remote.Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
}
