package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xAcousticbridge/GAID/internal/models"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Dashboard.Load(ctx)
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)

	u := f.signIn(t, "ada")
	f.fake.Seed("daily_routines",
		models.DailyRoutine{ID: "r1", UserID: u.ID, Name: "Morning", CreatedAt: at(1)},
		models.DailyRoutine{ID: "r2", UserID: "other", Name: "Night", CreatedAt: at(2)},
	)
	f.fake.Seed("goals",
		models.Goal{ID: "g1", UserID: u.ID, Title: "Read 10 books", Target: 10, Current: 4, CreatedAt: at(1)},
		models.Goal{ID: "g2", UserID: u.ID, Title: "Run 100km", Target: 100, Current: 120, CreatedAt: at(2)},
	)

	d, err := f.svc.Dashboard.Load(ctx)
	require.NoError(t, err)
	require.Len(t, d.Routines, 1)
	assert.Equal(t, "Morning", d.Routines[0].Name)
	require.Len(t, d.Goals, 2)
	assert.InDelta(t, 40, d.Goals[0].Progress(), 0.001)
	assert.InDelta(t, 100, d.Goals[1].Progress(), 0.001)
}

func TestDashboardFailureIsNotice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.fake.FailOn("goals", remote.OpSelect, &remote.Error{Code: remote.CodeUnknownTable, Message: "relation goals does not exist", Status: 404})

	_, err := f.svc.Dashboard.Load(ctx)
	var cliErr *apperrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "Failed to load dashboard data", cliErr.Message)
}

func TestProfileActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signIn(t, "ada")
	seedIdea(f, "a", u.ID, "Older", "Finance", 1)
	seedIdea(f, "b", u.ID, "Newer", "Finance", 2)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 34; i >= 0; i-- {
		f.fake.Seed("user_activity", models.UserActivity{
			ID:     fmt.Sprintf("act-%d", i),
			UserID: u.ID,
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Count:  i,
		})
	}
	f.fake.Seed("user_activity", models.UserActivity{ID: "other", UserID: "other", Date: "2025-12-01", Count: 9})

	p, err := f.svc.Activity.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Profile.Username)
	require.Len(t, p.Ideas, 2)
	assert.Equal(t, "Newer", p.Ideas[0].Title)
	require.Len(t, p.Activity, ActivityDays)
	assert.Equal(t, "2026-01-01", p.Activity[0].Date)
	assert.Equal(t, "2026-01-30", p.Activity[ActivityDays-1].Date)
}

func TestActivityRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.svc.Activity.Record(ctx)
	assert.Empty(t, f.fake.Rows("user_activity"), "nothing is recorded without a user")

	f.signIn(t, "ada")
	f.svc.Activity.now = func() time.Time { return at(7) }
	f.svc.Activity.Record(ctx)
	f.svc.Activity.Record(ctx)

	rows := f.fake.Rows("user_activity")
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03-07", rows[0]["date"])
	assert.EqualValues(t, 2, rows[0]["count"])
}

func TestSavePrompt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Prompts.Save(ctx, "plan my week")
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)

	u := f.signIn(t, "ada")
	_, err = f.svc.Prompts.Save(ctx, "   ")
	requireNotice(t, err, apperrors.ErrorTypeValidation)

	p, err := f.svc.Prompts.Save(ctx, "  plan my week ")
	require.NoError(t, err)
	assert.Equal(t, "plan my week", p.Content)
	assert.Equal(t, u.ID, p.UserID)

	prompts, err := f.svc.Prompts.List(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "plan my week", prompts[0].Content)
	assert.Equal(t, "Prompt saved successfully!", f.st.State().Notifications.Items[0].Message)
}
