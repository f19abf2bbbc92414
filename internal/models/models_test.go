package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func TestAllModelsParse(t *testing.T) {
	cache := &sync.Map{}
	for _, m := range All() {
		_, err := schema.Parse(m, cache, schema.NamingStrategy{})
		assert.NoError(t, err, "%T", m)
	}
}

func TestStringArrayColumnType(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	s, err := schema.Parse(&Idea{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	tags := s.LookUpField("Tags")
	require.NotNil(t, tags)

	assert.Equal(t, schema.DataType("text"), tags.DataType)
	assert.Equal(t, "text", StringArray{}.GormDBDataType(db, tags))
}

func TestStringArrayRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Idea{}, &UserPreferences{}))

	idea := Idea{UserID: "11111111-1111-1111-1111-111111111111", Title: "Batch errands", Tags: StringArray{"habits", "time"}}
	require.NoError(t, db.Create(&idea).Error)

	var got Idea
	require.NoError(t, db.First(&got, "id = ?", idea.ID).Error)
	assert.Equal(t, StringArray{"habits", "time"}, got.Tags)
}

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"empty", "{}", StringArray{}},
		{"bytes", []byte(`{a,"b"}`), StringArray{"a", "b"}},
		{"string", "{x}", StringArray{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.in))
			assert.Equal(t, tt.want, a)
		})
	}
}
