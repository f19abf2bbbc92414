package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// PromptService keeps prompts from the prompt builder
type PromptService struct {
	base
}

// NewPromptService creates a new prompt service
func NewPromptService(client remote.Client, st *store.Store, log *zap.Logger) *PromptService {
	return &PromptService{base: newBase(client, st, log)}
}

// Save stores content as a prompt of the signed-in user
func (s *PromptService) Save(ctx context.Context, content string) (*models.SavedPrompt, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ValidationError("prompt", "enter a prompt first")
	}

	var prompt models.SavedPrompt
	err = s.client.From("saved_prompts").Insert(ctx, map[string]interface{}{
		"user_id": uid,
		"content": content,
	}, &prompt)
	if err != nil {
		return nil, s.fail("save prompt", err, logger.WithUserID(uid))
	}
	s.store.AddNotification("prompt", "Prompt saved successfully!")
	return &prompt, nil
}

// List returns the signed-in user's saved prompts, newest first
func (s *PromptService) List(ctx context.Context) ([]models.SavedPrompt, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	prompts := []models.SavedPrompt{}
	if err := s.client.From("saved_prompts").Eq("user_id", uid).Order("created_at", false).Find(ctx, &prompts); err != nil {
		return nil, s.fail("load prompts", err, logger.WithUserID(uid))
	}
	return prompts, nil
}
