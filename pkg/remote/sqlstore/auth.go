package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

const (
	issuer            = "goodaideas"
	minPasswordLength = 6

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var errInvalidCredentials = &remote.Error{
	Code:    remote.CodeInvalidGrant,
	Message: "Invalid login credentials",
	Status:  http.StatusBadRequest,
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Auth keeps accounts in auth_users and issues HS256 JWT sessions
type Auth struct {
	remote.Broadcaster

	db         *gorm.DB
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	cost       int
	sessions   remote.SessionStore
	log        *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	session *remote.Session
	loaded  bool
}

func newAuth(db *gorm.DB, opts Options, log *zap.Logger) *Auth {
	a := &Auth{
		db:         db,
		secret:     []byte(opts.JWTSecret),
		ttl:        opts.TokenTTL,
		refreshTTL: opts.RefreshTTL,
		cost:       opts.BcryptCost,
		sessions:   opts.Sessions,
		log:        log,
		now:        opts.Now,
	}
	if a.ttl == 0 {
		a.ttl = time.Hour
	}
	if a.refreshTTL == 0 {
		a.refreshTTL = 30 * 24 * time.Hour
	}
	if a.cost == 0 {
		a.cost = bcrypt.DefaultCost
	}
	return a
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUser(u *models.AuthUser) *remote.User {
	return &remote.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (a *Auth) emit(event remote.AuthEvent, s *remote.Session) {
	metrics.Get().AuthEventsTotal.WithLabelValues(string(event)).Inc()
	a.Emit(event, s)
}

func (a *Auth) sign(u *models.AuthUser, kind string, ttl time.Duration) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(ttl)
	claims := tokenClaims{
		Email: u.Email,
		Type:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	return token, exp, err
}

func (a *Auth) issue(u *models.AuthUser) (*remote.Session, error) {
	access, exp, err := a.sign(u, tokenAccess, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, _, err := a.sign(u, tokenRefresh, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &remote.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    exp,
		User:         toUser(u),
	}, nil
}

// parse validates a token of the given kind and returns its claims
func (a *Auth) parse(token, kind string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != kind {
		return nil, fmt.Errorf("expected %s token, got %q", kind, claims.Type)
	}
	return claims, nil
}

// VerifyAccessToken returns the user an access token was issued to
func (a *Auth) VerifyAccessToken(token string) (*remote.User, error) {
	claims, err := a.parse(token, tokenAccess)
	if err != nil {
		return nil, &remote.Error{Code: "bad_jwt", Message: "invalid JWT: " + err.Error(), Status: http.StatusUnauthorized}
	}
	return &remote.User{ID: claims.Subject, Email: claims.Email}, nil
}

// GetSession returns the stored session. An expired access token is renewed
// from the refresh token; a session that cannot be renewed is signed out.
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
	a.mu.Unlock()

	if s == nil || s.AccessToken == "" {
		return nil, nil
	}
	if _, err := a.parse(s.AccessToken, tokenAccess); err == nil {
		return s, nil
	}

	refreshed, err := a.refresh(ctx, s.RefreshToken)
	if err != nil {
		a.log.Info("Stored session could not be refreshed, signing out locally", zap.Error(err))
		a.clear()
		a.emit(remote.EventSignedOut, nil)
		return nil, nil
	}

	a.store(refreshed)
	a.emit(remote.EventTokenRefreshed, refreshed)
	return refreshed, nil
}

func (a *Auth) refresh(ctx context.Context, token string) (*remote.Session, error) {
	claims, err := a.parse(token, tokenRefresh)
	if err != nil {
		return nil, err
	}

	var u models.AuthUser
	if err := a.db.WithContext(ctx).Where("id = ?", claims.Subject).Take(&u).Error; err != nil {
		return nil, err
	}
	return a.issue(&u)
}

// OnAuthStateChange registers fn for session changes
func (a *Auth) OnAuthStateChange(fn remote.AuthChangeFunc) *remote.Subscription {
	return a.Subscribe(fn)
}

// SignUp creates the account and its profile row, then signs in
func (a *Auth) SignUp(ctx context.Context, email, password string) (*remote.Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &remote.Error{Code: "validation_failed", Message: "Unable to validate email address: invalid format", Status: http.StatusBadRequest}
	}
	if len(password) < minPasswordLength {
		return nil, &remote.Error{
			Code:    "weak_password",
			Message: fmt.Sprintf("Password should be at least %d characters.", minPasswordLength),
			Status:  http.StatusUnprocessableEntity,
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.AuthUser{Email: email, PasswordHash: string(hash)}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{ID: u.ID}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &remote.Error{Code: "user_already_exists", Message: "User already registered", Status: http.StatusUnprocessableEntity}
	}
	if err != nil {
		return nil, translate(err)
	}

	s, err := a.issue(u)
	if err != nil {
		return nil, err
	}
	a.log.Info("User signed up", logger.WithUserID(u.ID))
	a.store(s)
	a.emit(remote.EventSignedIn, s)
	return s, nil
}

// SignInWithPassword checks the password against the stored bcrypt hash
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	var u models.AuthUser
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, translate(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := a.now().UTC()
	if err := a.db.WithContext(ctx).Model(&u).Update("last_sign_in_at", now).Error; err != nil {
		a.log.Warn("Failed to record sign-in", logger.WithUserID(u.ID), zap.Error(err))
	}

	s, err := a.issue(&u)
	if err != nil {
		return nil, err
	}
	a.store(s)
	a.emit(remote.EventSignedIn, s)
	return s, nil
}

// SignOut forgets the session. Tokens are stateless, so nothing is revoked.
func (a *Auth) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
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
