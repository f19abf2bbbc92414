package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// FavoriteService saves ideas for the signed-in user
type FavoriteService struct {
	base
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(client remote.Client, st *store.Store, log *zap.Logger) *FavoriteService {
	return &FavoriteService{base: newBase(client, st, log)}
}

// IsFavorite reports whether the signed-in user saved ideaID
func (s *FavoriteService) IsFavorite(ctx context.Context, ideaID string) (bool, error) {
	uid, err := s.userID()
	if err != nil {
		return false, err
	}

	found, err := s.isFavorite(ctx, uid, ideaID)
	if err != nil {
		return false, s.fail("load favorite", err, logger.WithUserID(uid), logger.WithIdeaID(ideaID))
	}
	return found, nil
}

func (s *FavoriteService) isFavorite(ctx context.Context, uid, ideaID string) (bool, error) {
	var row models.Favorite
	return s.client.From("favorites").
		Select("id").
		Eq("user_id", uid).
		Eq("idea_id", ideaID).
		MaybeSingle(ctx, &row)
}

// Toggle saves ideaID, or removes it when already saved. It returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, ideaID string) (bool, error) {
	uid, err := s.userID()
	if err != nil {
		return false, err
	}

	ctx, span := s.events.TraceInteraction(ctx, "favorite", ideaID, uid)
	saved, err := s.toggle(ctx, uid, ideaID)
	telemetry.End(span, err)
	if err != nil {
		return false, s.fail("update favorite", err, logger.WithUserID(uid), logger.WithIdeaID(ideaID))
	}

	s.log.Debug("Favorite toggled", logger.WithUserID(uid), logger.WithIdeaID(ideaID), zap.Bool("saved", saved))
	return saved, nil
}

func (s *FavoriteService) toggle(ctx context.Context, uid, ideaID string) (bool, error) {
	found, err := s.isFavorite(ctx, uid, ideaID)
	if err != nil {
		return false, err
	}

	key := map[string]interface{}{"user_id": uid, "idea_id": ideaID}
	if found {
		return false, s.client.From("favorites").Match(key).Delete(ctx)
	}
	return true, s.client.From("favorites").Insert(ctx, key, nil)
}

// List returns the ideas the signed-in user saved, newest save first
func (s *FavoriteService) List(ctx context.Context) ([]IdeaSummary, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	var favorites []models.Favorite
	err = s.client.From("favorites").Eq("user_id", uid).Order("created_at", false).Find(ctx, &favorites)
	if err != nil {
		return nil, s.fail("load favorites", err, logger.WithUserID(uid))
	}
	if len(favorites) == 0 {
		return []IdeaSummary{}, nil
	}

	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.IdeaID)
	}
	var ideas []models.Idea
	if err := s.client.From("ideas").In("id", ids).Find(ctx, &ideas); err != nil {
		return nil, s.fail("load favorites", err, logger.WithUserID(uid), logger.WithTable("ideas"))
	}

	byID := make(map[string]models.Idea, len(ideas))
	authorIDs := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		byID[idea.ID] = idea
		authorIDs = append(authorIDs, idea.UserID)
	}
	authors, err := loadAuthors(ctx, s.client, authorIDs)
	if err != nil {
		return nil, s.fail("load favorites", err, logger.WithUserID(uid), logger.WithTable("profiles"))
	}

	out := make([]IdeaSummary, 0, len(favorites))
	for _, f := range favorites {
		if idea, ok := byID[f.IdeaID]; ok {
			out = append(out, IdeaSummary{Idea: idea, Author: authors[idea.UserID]})
		}
	}
	return out, nil
}
