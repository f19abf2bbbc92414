package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xAcousticbridge/GAID/internal/models"
)

func TestDialector(t *testing.T) {
	assert.Equal(t, "sqlite", dialector("sqlite:/tmp/x.db").Name())
	assert.Equal(t, "postgres", dialector("postgres://localhost/goodaideas").Name())
}

func TestMigrateAndCount(t *testing.T) {
	db, err := Open(Options{URL: "sqlite:" + filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrating twice is a no-op")
	require.NoError(t, Health(db))

	require.NoError(t, db.Create(&models.Profile{ID: "11111111-1111-1111-1111-111111111111", Username: "ada"}).Error)

	counts, err := Counts(db)
	require.NoError(t, err)
	require.Len(t, counts, len(models.All()))

	byTable := make(map[string]int64, len(counts))
	for _, c := range counts {
		byTable[c.Table] = c.Rows
	}
	assert.EqualValues(t, 1, byTable["profiles"])
	assert.EqualValues(t, 0, byTable["ideas"])
}

func TestNilDatabase(t *testing.T) {
	assert.Error(t, Migrate(nil))
	assert.Error(t, Health(nil))
	assert.NoError(t, Close(nil))
	_, err := Counts(nil)
	assert.Error(t, err)
}
