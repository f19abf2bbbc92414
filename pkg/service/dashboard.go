package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// Dashboard is the signed-in user's routines and goals
type Dashboard struct {
	Routines []models.DailyRoutine `json:"routines"`
	Goals    []models.Goal         `json:"goals"`
}

// DashboardService loads the dashboard
type DashboardService struct {
	base
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(client remote.Client, st *store.Store, log *zap.Logger) *DashboardService {
	return &DashboardService{base: newBase(client, st, log)}
}

// Load returns the signed-in user's dashboard
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Routines: []models.DailyRoutine{}, Goals: []models.Goal{}}
	if err := s.client.From("daily_routines").Eq("user_id", uid).Order("created_at", true).Find(ctx, &d.Routines); err != nil {
		return nil, s.fail("load dashboard data", err, logger.WithUserID(uid), logger.WithTable("daily_routines"))
	}
	if err := s.client.From("goals").Eq("user_id", uid).Order("created_at", true).Find(ctx, &d.Goals); err != nil {
		return nil, s.fail("load dashboard data", err, logger.WithUserID(uid), logger.WithTable("goals"))
	}
	return d, nil
}
