package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// BindSession loads the provider's current session into the store and keeps the
// store following later session changes. The returned func releases the
// subscription; the caller owns it.
func (s *Store) BindSession(ctx context.Context) (func(), error) {
	session, err := s.client.Auth().GetSession(ctx)
	if err != nil {
		return nil, s.fail("bind_session", err)
	}
	s.applySession(ctx, remote.EventInitialSession, session)

	sub := s.client.Auth().OnAuthStateChange(func(event remote.AuthEvent, session *remote.Session) {
		// Callbacks outlive the bind call, so they get their own context.
		s.applySession(context.Background(), event, session)
	})
	return sub.Unsubscribe, nil
}

func (s *Store) applySession(ctx context.Context, event remote.AuthEvent, session *remote.Session) {
	metrics.Get().AuthEventsTotal.WithLabelValues(string(event)).Inc()

	var user *remote.User
	if session != nil {
		user = session.User
	}
	s.SetUser(user)
	if user == nil {
		return
	}

	if err := s.FetchUserData(ctx); err != nil {
		s.log.Warn("Failed to load user data after session change",
			zap.String("event", string(event)),
			zap.Error(err))
	}
}
