package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/0xAcousticbridge/GAID/internal/database"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

func TestSeedDevAndClean(t *testing.T) {
	db, err := database.Open(database.Options{URL: "sqlite::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	s := NewSeeder(db, 42, zaptest.NewLogger(t))
	s.cost = bcrypt.MinCost

	sizes := Sizes{Users: 4, Ideas: 12, Comments: 20, Ratings: 30}
	require.NoError(t, s.SeedDev(sizes))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 4, count(&models.AuthUser{}))
	assert.EqualValues(t, 4, count(&models.Profile{}))
	assert.EqualValues(t, 12, count(&models.Idea{}))
	assert.EqualValues(t, 20, count(&models.Comment{}))
	assert.LessOrEqual(t, count(&models.IdeaRating{}), int64(30))
	assert.Positive(t, count(&models.IdeaRating{}))
	assert.Positive(t, count(&models.Goal{}))

	var ideas []models.Idea
	require.NoError(t, db.Find(&ideas).Error)
	for _, idea := range ideas {
		assert.True(t, service.IsCategory(idea.Category), idea.Category)
		assert.LessOrEqual(t, len(idea.Tags), service.MaxTags)
	}

	var prefs []models.UserPreferences
	require.NoError(t, db.Find(&prefs).Error)
	for _, p := range prefs {
		assert.NotEmpty(t, p.FocusAreas)
		assert.NotEmpty(t, p.DailyRoutinePreferences.Data().ProductiveHours)
	}

	var activity []models.UserActivity
	require.NoError(t, db.Find(&activity).Error)
	for _, a := range activity {
		assert.Len(t, a.Date, len("2006-01-02"))
		assert.Positive(t, a.Count)
	}

	var account models.AuthUser
	require.NoError(t, db.First(&account).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(DevPassword)))

	require.NoError(t, s.Clean())
	assert.Zero(t, count(&models.AuthUser{}))
	assert.Zero(t, count(&models.Idea{}))
	assert.Zero(t, count(&models.UserActivity{}))
}

func TestSeedDevWithoutUsers(t *testing.T) {
	db, err := database.Open(database.Options{URL: "sqlite::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	require.NoError(t, NewSeeder(db, 1, nil).SeedDev(Sizes{Ideas: 5}))
	var n int64
	require.NoError(t, db.Model(&models.Idea{}).Count(&n).Error)
	assert.Zero(t, n)
}
