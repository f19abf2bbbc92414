package rest

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// refreshMargin refreshes tokens slightly before they expire
const refreshMargin = 30 * time.Second

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse is the GoTrue session payload
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *remote.User `json:"user"`
}

// signupResponse is either a session or, when email confirmation is on, a bare user
type signupResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (t tokenResponse) session() *remote.Session {
	s := &remote.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		User:         t.User,
	}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	default:
		s.ExpiresAt = tokenExpiry(t.AccessToken)
	}
	return s
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend verifies tokens, the client only needs to know when to refresh
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Auth is the GoTrue auth client
type Auth struct {
	remote.Broadcaster

	http     *resty.Client
	anonKey  string
	sessions remote.SessionStore
	log      *zap.Logger

	mu      sync.Mutex
	session *remote.Session
	loaded  bool
}

func newAuth(httpClient *resty.Client, anonKey string, sessions remote.SessionStore, log *zap.Logger) *Auth {
	return &Auth{
		http:     httpClient,
		anonKey:  anonKey,
		sessions: sessions,
		log:      logger.OrNop(log),
	}
}

func (a *Auth) emit(event remote.AuthEvent, s *remote.Session) {
	metrics.Get().AuthEventsTotal.WithLabelValues(string(event)).Inc()
	a.Emit(event, s)
}

// GetSession returns the current session, refreshing an expired one when possible
func (a *Auth) GetSession(ctx context.Context) (*remote.Session, error) {
	a.mu.Lock()

	if !a.loaded {
		s, err := a.sessions.Load()
		if err != nil {
			a.mu.Unlock()
			return nil, err
		}
		a.session = s
		a.loaded = true
	}

	s := a.session
	if s == nil || s.AccessToken == "" {
		a.mu.Unlock()
		return nil, nil
	}
	if s.ExpiresAt.IsZero() || time.Now().Add(refreshMargin).Before(s.ExpiresAt) {
		a.mu.Unlock()
		return s, nil
	}

	refreshed, err := a.refreshLocked(ctx, s.RefreshToken)
	a.mu.Unlock()

	if err != nil {
		if remote.IsUnauthorized(err) || isBadRequest(err) {
			a.log.Info("Stored session could not be refreshed, signing out locally", zap.Error(err))
			a.clear()
			a.emit(remote.EventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}

	a.emit(remote.EventTokenRefreshed, refreshed)
	return refreshed, nil
}

func isBadRequest(err error) bool {
	re, ok := err.(*remote.Error)
	return ok && re.Status == 400
}

func (a *Auth) refreshLocked(ctx context.Context, refreshToken string) (*remote.Session, error) {
	if refreshToken == "" {
		return nil, remote.ErrNotAuthenticated
	}

	a.log.Debug("Refreshing access token")

	var tok tokenResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "refresh_token").
		SetBody(refreshRequest{RefreshToken: refreshToken}).
		Post(authPath + "/token")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return nil, err
	}

	s := tok.session()
	a.session = s
	if err := a.sessions.Save(s); err != nil {
		a.log.Warn("Failed to save refreshed session", zap.Error(err))
	}
	return s, nil
}

// OnAuthStateChange registers fn for session changes
func (a *Auth) OnAuthStateChange(fn remote.AuthChangeFunc) *remote.Subscription {
	return a.Subscribe(fn)
}

// SignInWithPassword authenticates with email and password
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	a.log.Debug("Attempting login", zap.String("email", email))

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", "password").
		SetBody(credentialsRequest{Email: email, Password: password}).
		Post(authPath + "/token")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return nil, err
	}

	s := tok.session()
	a.store(s)
	a.log.Debug("Login successful", logger.WithUserID(userID(s)))
	a.emit(remote.EventSignedIn, s)
	return s, nil
}

// SignUp registers an account. With email confirmation enabled the backend
// returns no session; SignUp then returns (nil, nil).
func (a *Auth) SignUp(ctx context.Context, email, password string) (*remote.Session, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(credentialsRequest{Email: email, Password: password}).
		Post(authPath + "/signup")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var body signupResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, err
	}
	if body.AccessToken == "" {
		a.log.Info("Signup pending email confirmation", zap.String("email", email), logger.WithUserID(body.ID))
		return nil, nil
	}

	s := body.session()
	a.store(s)
	a.emit(remote.EventSignedIn, s)
	return s, nil
}

// SignOut revokes the session remotely and forgets it locally. A token the
// backend no longer accepts still signs out locally.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	if !a.loaded {
		if stored, err := a.sessions.Load(); err == nil {
			a.session = stored
		}
		a.loaded = true
	}
	s := a.session
	a.mu.Unlock()

	if s != nil && s.AccessToken != "" {
		resp, err := a.http.R().
			SetContext(ctx).
			SetAuthToken(s.AccessToken).
			Post(authPath + "/logout")
		if err := CheckResponse(resp, err); err != nil && !remote.IsUnauthorized(err) {
			return err
		}
	}

	a.clear()
	a.emit(remote.EventSignedOut, nil)
	return nil
}

func (a *Auth) store(s *remote.Session) {
	a.mu.Lock()
	a.session = s
	a.loaded = true
	a.mu.Unlock()

	if err := a.sessions.Save(s); err != nil {
		a.log.Warn("Failed to save session", zap.Error(err))
	}
}

func (a *Auth) clear() {
	a.mu.Lock()
	a.session = nil
	a.loaded = true
	a.mu.Unlock()

	if err := a.sessions.Delete(); err != nil {
		a.log.Warn("Failed to delete stored session", zap.Error(err))
	}
}

// bearer returns the token for table requests: the user's when signed in,
// the anon key otherwise
func (a *Auth) bearer(ctx context.Context) string {
	s, err := a.GetSession(ctx)
	if err != nil || s == nil {
		return a.anonKey
	}
	return s.AccessToken
}

func userID(s *remote.Session) string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}
