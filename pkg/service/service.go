// Package service implements the GoodAIdeas features on top of the remote
// client and the session store. Every method returns either nil or a
// *errors.CLIError notice that is safe to show to a user.
package service

import (
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// base carries the collaborators every service needs
type base struct {
	client remote.Client
	store  *store.Store
	log    *zap.Logger
	events *telemetry.BusinessEvents
}

func newBase(client remote.Client, st *store.Store, log *zap.Logger) base {
	return base{
		client: client,
		store:  st,
		log:    logger.OrNop(log),
		events: telemetry.GetBusinessEvents(),
	}
}

// userID returns the signed-in user's id, or the not-signed-in notice
func (b base) userID() (string, error) {
	if u := b.store.State().User; u != nil {
		return u.ID, nil
	}
	return "", apperrors.NotSignedInError()
}

// fail logs err and converts it to the notice for action
func (b base) fail(action string, err error, fields ...zap.Field) error {
	notice := apperrors.Notice(action, err)
	metrics.Get().ErrorsTotal.WithLabelValues(string(notice.Type), action).Inc()

	fields = append(fields, zap.String("action", action), zap.Error(err))
	if notice.Type == apperrors.ErrorTypeValidation {
		b.log.Debug("Rejected request", fields...)
	} else {
		b.log.Error("Request failed", fields...)
	}
	return notice
}

// Services bundles every feature service over one client and store
type Services struct {
	Auth       *AuthService
	Ideas      *IdeaService
	Favorites  *FavoriteService
	Ratings    *RatingService
	Comments   *CommentService
	Onboarding *OnboardingService
	Dashboard  *DashboardService
	Activity   *ActivityService
	Prompts    *PromptService
	Settings   *SettingsService
}

// New creates all services. Sharing an idea or posting a comment counts
// toward the day's activity.
func New(client remote.Client, st *store.Store, log *zap.Logger) *Services {
	activity := NewActivityService(client, st, log)

	ideas := NewIdeaService(client, st, log)
	ideas.activity = activity
	comments := NewCommentService(client, st, log)
	comments.activity = activity

	return &Services{
		Auth:       NewAuthService(client, st, log),
		Ideas:      ideas,
		Favorites:  NewFavoriteService(client, st, log),
		Ratings:    NewRatingService(client, st, log),
		Comments:   comments,
		Onboarding: NewOnboardingService(client, st, log),
		Dashboard:  NewDashboardService(client, st, log),
		Activity:   activity,
		Prompts:    NewPromptService(client, st, log),
		Settings:   NewSettingsService(client, st, log),
	}
}
