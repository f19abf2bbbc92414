package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// MinPasswordLength is the shortest password the providers accept
const MinPasswordLength = 6

// SignUpResult reports a new account. User is nil while the provider waits
// for the email address to be confirmed.
type SignUpResult struct {
	User                 *remote.User
	ConfirmationRequired bool
}

// AuthService handles authentication. The store picks up session changes
// through its session binding, so callers bind the store before signing in.
type AuthService struct {
	base
}

// NewAuthService creates a new auth service
func NewAuthService(client remote.Client, st *store.Store, log *zap.Logger) *AuthService {
	return &AuthService{base: newBase(client, st, log)}
}

func validateCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.ValidationError("email", "cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperrors.ValidationError("email", "is not a valid address")
	}
	if password == "" {
		return "", apperrors.ValidationError("password", "cannot be empty")
	}
	return email, nil
}

// Login signs in with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*remote.User, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	session, err := s.client.Auth().SignInWithPassword(ctx, email, password)
	if err != nil {
		var re *remote.Error
		if errors.As(err, &re) && (re.Code == remote.CodeInvalidGrant || re.Code == "invalid_credentials") {
			s.log.Info("Sign in rejected", zap.String("email", email))
			notice := apperrors.AuthError("Invalid email or password")
			notice.Cause = err
			return nil, notice
		}
		return nil, s.fail("sign in", err, zap.String("email", email))
	}

	s.log.Info("Signed in", logger.WithUserID(session.User.ID))
	return session.User, nil
}

// SignUp registers a new account
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.ValidationError("password", "must be at least 6 characters")
	}

	session, err := s.client.Auth().SignUp(ctx, email, password)
	if err != nil {
		var re *remote.Error
		if errors.As(err, &re) {
			switch re.Code {
			case "user_already_exists", "email_exists":
				notice := apperrors.ConflictError("This email is already registered")
				notice.Cause = err
				return nil, notice
			case "weak_password":
				return nil, apperrors.ValidationError("password", "is too weak")
			}
		}
		return nil, s.fail("sign up", err, zap.String("email", email))
	}

	if session == nil {
		s.log.Info("Sign up awaiting confirmation", zap.String("email", email))
		return &SignUpResult{ConfirmationRequired: true}, nil
	}
	s.log.Info("Signed up", logger.WithUserID(session.User.ID))
	return &SignUpResult{User: session.User}, nil
}

// Logout signs out and resets the store
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return s.fail("sign out", err)
	}
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me() (*remote.User, error) {
	u := s.store.State().User
	if u == nil {
		return nil, apperrors.NotSignedInError()
	}
	return u, nil
}
