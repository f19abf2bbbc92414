package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// MaxCommentLength is the longest comment accepted, in characters
const MaxCommentLength = 2000

// CommentView is a comment with its author
type CommentView struct {
	models.Comment
	Author *IdeaAuthor `json:"author,omitempty"`
}

// CommentService provides operations for managing comments
type CommentService struct {
	base
	activity *ActivityService
}

// NewCommentService creates a new comment service
func NewCommentService(client remote.Client, st *store.Store, log *zap.Logger) *CommentService {
	return &CommentService{base: newBase(client, st, log)}
}

// List returns the comments on ideaID, oldest first
func (s *CommentService) List(ctx context.Context, ideaID string) ([]CommentView, error) {
	var comments []models.Comment
	err := s.client.From("comments").Eq("idea_id", ideaID).Order("created_at", true).Find(ctx, &comments)
	if err != nil {
		return nil, s.fail("load comments", err, logger.WithIdeaID(ideaID))
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := loadAuthors(ctx, s.client, ids)
	if err != nil {
		return nil, s.fail("load comments", err, logger.WithIdeaID(ideaID), logger.WithTable("profiles"))
	}

	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentView{Comment: c, Author: authors[c.UserID]})
	}
	return out, nil
}

// Add posts a comment on ideaID as the signed-in user
func (s *CommentService) Add(ctx context.Context, ideaID, content string) (*models.Comment, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ValidationError("comment", "cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperrors.ValidationError("comment", "exceeds 2000 character limit")
	}

	ctx, span := s.events.TraceInteraction(ctx, "comment", ideaID, uid)
	var comment models.Comment
	err = s.client.From("comments").Insert(ctx, map[string]interface{}{
		"idea_id": ideaID,
		"user_id": uid,
		"content": content,
	}, &comment)
	telemetry.End(span, err)
	if err != nil {
		return nil, s.fail("post comment", err, logger.WithUserID(uid), logger.WithIdeaID(ideaID))
	}
	if s.activity != nil {
		s.activity.Record(ctx)
	}
	return &comment, nil
}
