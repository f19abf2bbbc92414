package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// RatingService records 1-5 ratings of ideas
type RatingService struct {
	base
}

// NewRatingService creates a new rating service
func NewRatingService(client remote.Client, st *store.Store, log *zap.Logger) *RatingService {
	return &RatingService{base: newBase(client, st, log)}
}

// Mine returns the signed-in user's rating of ideaID, 0 when unrated
func (s *RatingService) Mine(ctx context.Context, ideaID string) (int, error) {
	uid, err := s.userID()
	if err != nil {
		return 0, err
	}

	var row models.IdeaRating
	found, err := s.client.From("idea_ratings").
		Select("rating").
		Eq("user_id", uid).
		Eq("idea_id", ideaID).
		MaybeSingle(ctx, &row)
	if err != nil {
		return 0, s.fail("load rating", err, logger.WithUserID(uid), logger.WithIdeaID(ideaID))
	}
	if !found {
		return 0, nil
	}
	return row.Rating, nil
}

// Rate sets the signed-in user's rating of ideaID, replacing an earlier one
func (s *RatingService) Rate(ctx context.Context, ideaID string, rating int) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return apperrors.ValidationError("rating", "must be between 1 and 5")
	}

	ctx, span := s.events.TraceInteraction(ctx, "rate", ideaID, uid)
	err = s.client.From("idea_ratings").Upsert(ctx, map[string]interface{}{
		"user_id": uid,
		"idea_id": ideaID,
		"rating":  rating,
	}, []string{"user_id", "idea_id"}, nil)
	telemetry.End(span, err)
	if err != nil {
		return s.fail("update rating", err, logger.WithUserID(uid), logger.WithIdeaID(ideaID))
	}
	return nil
}
