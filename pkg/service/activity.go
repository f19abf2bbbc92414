package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// ActivityDays is how many daily activity rows the profile page shows
const ActivityDays = 30

// Profile is what the profile page shows for the signed-in user
type Profile struct {
	Profile  *models.Profile       `json:"profile"`
	Ideas    []models.Idea         `json:"ideas"`
	Activity []models.UserActivity `json:"activity"`
}

// ActivityService reads and records per-day activity
type ActivityService struct {
	base
	now func() time.Time
}

// NewActivityService creates a new activity service
func NewActivityService(client remote.Client, st *store.Store, log *zap.Logger) *ActivityService {
	return &ActivityService{base: newBase(client, st, log), now: time.Now}
}

// Profile loads the signed-in user's ideas, newest first, and their first
// ActivityDays activity rows by date
func (s *ActivityService) Profile(ctx context.Context) (*Profile, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	p := &Profile{Profile: s.store.State().Profile, Ideas: []models.Idea{}, Activity: []models.UserActivity{}}
	if err := s.client.From("ideas").Eq("user_id", uid).Order("created_at", false).Find(ctx, &p.Ideas); err != nil {
		return nil, s.fail("load profile", err, logger.WithUserID(uid), logger.WithTable("ideas"))
	}
	err = s.client.From("user_activity").
		Eq("user_id", uid).
		Order("date", true).
		Limit(ActivityDays).
		Find(ctx, &p.Activity)
	if err != nil {
		return nil, s.fail("load profile", err, logger.WithUserID(uid), logger.WithTable("user_activity"))
	}
	return p, nil
}

// Record adds one to today's activity counter of the signed-in user. Without
// a user it does nothing; failures are logged and dropped.
func (s *ActivityService) Record(ctx context.Context) {
	uid, err := s.userID()
	if err != nil {
		return
	}
	today := s.now().UTC().Format("2006-01-02")

	var row models.UserActivity
	found, err := s.client.From("user_activity").Eq("user_id", uid).Eq("date", today).MaybeSingle(ctx, &row)
	if err == nil {
		count := 1
		if found {
			count = row.Count + 1
		}
		err = s.client.From("user_activity").Upsert(ctx, map[string]interface{}{
			"user_id": uid,
			"date":    today,
			"count":   count,
		}, []string{"user_id", "date"}, nil)
	}
	if err != nil {
		s.log.Warn("Failed to record activity", logger.WithUserID(uid), zap.Error(err))
	}
}
