package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/remote/remotetest"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

func fontPtr(f store.FontSize) *store.FontSize { return &f }
func themePtr(t store.Theme) *store.Theme      { return &t }

func TestRestartRestoresOnlySettings(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	fake := remotetest.New()
	fake.Seed("profiles", models.Profile{ID: "u1", OnboardingCompleted: true})

	first := store.New(fake, store.WithPersister(New(fs, "file", nil)))
	first.UpdateSettings(store.SettingsPatch{FontSize: fontPtr(store.FontLarge)})
	first.SetUser(&remote.User{ID: "u1"})
	require.NoError(t, first.FetchUserData(context.Background()))
	first.SetOnboardingStep(2)
	first.AddNotification("idea", "x")

	// fresh process: new storage handle on the same directory
	fs2, err := NewFileStorage(dir)
	require.NoError(t, err)
	second := store.New(remotetest.New(), store.WithPersister(New(fs2, "file", nil)))

	st := second.State()
	assert.Equal(t, store.FontLarge, st.Settings.FontSize)
	assert.Equal(t, store.ThemeSystem, st.Settings.Theme)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.Equal(t, store.Onboarding{}, st.Onboarding)
	assert.Empty(t, st.Notifications.Items)
}

func TestSaveWritesVersionedPartition(t *testing.T) {
	mem := NewMemoryStorage()
	p := New(mem, "memory", nil)

	s := store.DefaultSettings()
	s.Theme = store.ThemeDark
	require.NoError(t, p.Save(s))

	raw, ok, err := mem.GetItem(Name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{
		"state": {"settings": {
			"theme": "dark",
			"fontSize": "medium",
			"notifications": {"email": true, "push": true, "inApp": true},
			"accessibility": {"reduceMotion": false, "highContrast": false}
		}},
		"version": 1
	}`, raw)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *store.Settings
	}{
		{
			name: "missing keys keep defaults",
			raw:  `{"state":{"settings":{"fontSize":"small"}},"version":1}`,
			want: func() *store.Settings {
				s := store.DefaultSettings()
				s.FontSize = store.FontSmall
				return &s
			}(),
		},
		{
			name: "invalid enums normalized",
			raw:  `{"state":{"settings":{"theme":"neon","fontSize":"huge","accessibility":{"reduceMotion":true}}},"version":1}`,
			want: func() *store.Settings {
				s := store.DefaultSettings()
				s.Accessibility.ReduceMotion = true
				return &s
			}(),
		},
		{
			name: "older version accepted",
			raw:  `{"state":{"settings":{"theme":"light"}},"version":0}`,
			want: func() *store.Settings {
				s := store.DefaultSettings()
				s.Theme = store.ThemeLight
				return &s
			}(),
		},
		{name: "newer version ignored", raw: `{"state":{"settings":{"theme":"dark"}},"version":2}`},
		{name: "malformed ignored", raw: `{"state":`},
		{name: "null settings ignored", raw: `{"state":{"settings":null},"version":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemoryStorage()
			require.NoError(t, mem.SetItem(Name, tt.raw))

			got, err := New(mem, "memory", nil).Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadWithoutRecord(t *testing.T) {
	got, err := New(NewMemoryStorage(), "memory", nil).Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

type failingStorage struct{ *MemoryStorage }

func (*failingStorage) GetItem(string) (string, bool, error) { return "", false, errors.New("io error") }

func TestLoadStorageErrorReturned(t *testing.T) {
	_, err := New(&failingStorage{NewMemoryStorage()}, "memory", nil).Load()
	assert.Error(t, err)
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, ok, err := fs.GetItem("x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.SetItem("x", "one"))
	require.NoError(t, fs.SetItem("x", "two"))

	v, ok, err := fs.GetItem("x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	info, err := os.Stat(filepath.Join(dir, "x.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, fs.RemoveItem("x"))
	require.NoError(t, fs.RemoveItem("x"))
	_, ok, _ = fs.GetItem("x")
	assert.False(t, ok)
}

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestRedisStorageRoundTrip(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	rs := NewRedisStorage(kv, "goodaideas:")
	p := New(rs, "redis", nil)

	got, err := p.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	s := store.DefaultSettings().Apply(store.SettingsPatch{Theme: themePtr(store.ThemeLight)})
	require.NoError(t, p.Save(s))
	assert.Contains(t, kv.data, "goodaideas:"+Name)

	got, err = p.Load()
	require.NoError(t, err)
	assert.Equal(t, &s, got)

	require.NoError(t, p.Clear())
	assert.Empty(t, kv.data)
}
