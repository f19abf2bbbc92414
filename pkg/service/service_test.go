package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/0xAcousticbridge/GAID/internal/models"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/remote/remotetest"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

type fixture struct {
	fake *remotetest.Client
	st   *store.Store
	svc  *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := remotetest.New()
	fake.Unique("favorites", "user_id", "idea_id")
	st := store.New(fake)
	return &fixture{fake: fake, st: st, svc: New(fake, st, zaptest.NewLogger(t))}
}

// signIn registers a user with a profile and puts it in the store
func (f *fixture) signIn(t *testing.T, username string) *remote.User {
	t.Helper()
	u := f.fake.FakeAuth().AddUser(username+"@example.com", "secret1")
	profile := models.Profile{ID: u.ID, Username: username, AvatarURL: "https://img.example.com/" + username}
	f.fake.Seed("profiles", profile)
	f.st.SetUser(u)
	f.st.SetProfile(&profile)
	return u
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
}

func requireNotice(t *testing.T, err error, want apperrors.ErrorType) *apperrors.CLIError {
	t.Helper()
	var cliErr *apperrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, want, cliErr.Type)
	return cliErr
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fake.FakeAuth().AddUser("ada@example.com", "secret1")

	release, err := f.st.BindSession(ctx)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Auth.Login(ctx, "not-an-email", "secret1")
	requireNotice(t, err, apperrors.ErrorTypeValidation)

	_, err = f.svc.Auth.Login(ctx, "ada@example.com", "wrong")
	notice := requireNotice(t, err, apperrors.ErrorTypeAuth)
	assert.Equal(t, "Invalid email or password", notice.Message)
	assert.Nil(t, f.st.State().User)

	user, err := f.svc.Auth.Login(ctx, " ada@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	state := f.st.State()
	require.NotNil(t, state.User)
	assert.Equal(t, user.ID, state.User.ID)
	require.NotNil(t, state.Profile, "profile is created on first sign in")

	me, err := f.svc.Auth.Me()
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Auth.SignUp(ctx, "ada@example.com", "123")
	requireNotice(t, err, apperrors.ErrorTypeValidation)

	res, err := f.svc.Auth.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.False(t, res.ConfirmationRequired)

	_, err = f.svc.Auth.SignUp(ctx, "ada@example.com", "secret1")
	notice := requireNotice(t, err, apperrors.ErrorTypeConflict)
	assert.Equal(t, "This email is already registered", notice.Message)
}

func TestLogoutResetsStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.st.AddNotification("idea", "hello")

	require.NoError(t, f.svc.Auth.Logout(ctx))
	assert.Nil(t, f.st.State().User)
	assert.Empty(t, f.st.State().Notifications.Items)

	_, err := f.svc.Auth.Me()
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)
}

func TestLogoutFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.fake.FakeAuth().FailSignOut(&remote.Error{Message: "upstream down", Status: 503})

	err := f.svc.Auth.Logout(ctx)
	notice := requireNotice(t, err, apperrors.ErrorTypeServer)
	assert.Equal(t, "Failed to sign out", notice.Message)
	assert.NotNil(t, f.st.State().User)
}

func TestSettingsSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.Settings.Sync(ctx)
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)

	u := f.signIn(t, "ada")
	dark := store.ThemeDark

	settings, err := f.svc.Settings.Update(ctx, store.SettingsPatch{Theme: &dark}, false)
	require.NoError(t, err)
	assert.Equal(t, store.ThemeDark, settings.Theme)
	assert.Zero(t, f.fake.CallCount("user_settings", remote.OpUpsert), "local update must not write remotely")

	large := store.FontLarge
	_, err = f.svc.Settings.Update(ctx, store.SettingsPatch{FontSize: &large}, true)
	require.NoError(t, err)
	require.NoError(t, f.svc.Settings.Sync(ctx))

	rows := f.fake.Rows("user_settings")
	require.Len(t, rows, 1)
	assert.Equal(t, u.ID, rows[0]["user_id"])
	assert.Equal(t, "dark", rows[0]["theme"])
	assert.Equal(t, "large", rows[0]["font_size"])
}

func TestSettingsSyncFailureIsNotice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.fake.FailOn("user_settings", remote.OpUpsert, &remote.Error{Code: "42501", Message: "permission denied for table user_settings", Status: 403})

	err := f.svc.Settings.Sync(ctx)
	notice := requireNotice(t, err, apperrors.ErrorTypeValidation)
	assert.Equal(t, "Failed to save settings", notice.Message)
	assert.NotContains(t, apperrors.FormatError(err), "permission denied")
}
