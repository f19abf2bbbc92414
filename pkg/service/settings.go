package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// SettingsService writes local settings to the remote settings row
type SettingsService struct {
	base
}

// NewSettingsService creates a new settings service
func NewSettingsService(client remote.Client, st *store.Store, log *zap.Logger) *SettingsService {
	return &SettingsService{base: newBase(client, st, log)}
}

// Current returns the local settings
func (s *SettingsService) Current() store.Settings {
	return s.store.State().Settings
}

// Update applies patch locally and, when sync is set, writes the result remotely
func (s *SettingsService) Update(ctx context.Context, patch store.SettingsPatch, sync bool) (store.Settings, error) {
	s.store.UpdateSettings(patch)
	if sync {
		if err := s.Sync(ctx); err != nil {
			return s.Current(), err
		}
	}
	return s.Current(), nil
}

// Sync upserts the local settings into the signed-in user's settings row
func (s *SettingsService) Sync(ctx context.Context) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}

	row := s.Current().Row(uid)
	if err := s.client.From("user_settings").Upsert(ctx, row, []string{"user_id"}, nil); err != nil {
		return s.fail("save settings", err, logger.WithUserID(uid))
	}
	s.log.Debug("Settings synced", logger.WithUserID(uid))
	return nil
}
