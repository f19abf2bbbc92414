package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

func completePreferences() Preferences {
	p := DefaultPreferences()
	p.Goals = []string{"productivity", "health"}
	p.Categories = []string{"meal-planning"}
	return p
}

func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name string
		step OnboardingStep
		edit func(*Preferences)
		ok   bool
	}{
		{"defaults pass schedule", StepSchedule, func(*Preferences) {}, true},
		{"missing wake time", StepSchedule, func(p *Preferences) { p.Schedule.WakeTime = "" }, false},
		{"malformed sleep time", StepSchedule, func(p *Preferences) { p.Schedule.SleepTime = "late" }, false},
		{"no productive period", StepSchedule, func(p *Preferences) { p.Schedule.ProductiveHours = nil }, false},
		{"no goals", StepGoals, func(p *Preferences) { p.Goals = nil }, false},
		{"goals", StepGoals, func(*Preferences) {}, true},
		{"no frequency", StepAIPreferences, func(p *Preferences) { p.SuggestionsFrequency = "" }, false},
		{"unknown frequency", StepAIPreferences, func(p *Preferences) { p.SuggestionsFrequency = "always" }, false},
		{"no category", StepAIPreferences, func(p *Preferences) { p.Categories = []string{} }, false},
		{"ai preferences", StepAIPreferences, func(*Preferences) {}, true},
		{"unknown step", OnboardingStep("billing"), func(*Preferences) {}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := completePreferences()
			tc.edit(&p)
			err := p.Validate(tc.step)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			requireNotice(t, err, apperrors.ErrorTypeValidation)
		})
	}
}

func TestOnboardingSteps(t *testing.T) {
	f := newFixture(t)
	svc := f.svc.Onboarding
	p := DefaultPreferences()

	assert.Equal(t, StepSchedule, svc.Current())

	p.Schedule.ProductiveHours = nil
	step, err := svc.Next(p)
	requireNotice(t, err, apperrors.ErrorTypeValidation)
	assert.Equal(t, StepSchedule, step)
	assert.Zero(t, f.st.State().Onboarding.Step)

	p = DefaultPreferences()
	step, err = svc.Next(p)
	require.NoError(t, err)
	assert.Equal(t, StepGoals, step)

	_, err = svc.Next(p)
	requireNotice(t, err, apperrors.ErrorTypeValidation)

	p.Goals = []string{"learning"}
	p.Categories = []string{"exercise"}
	step, err = svc.Next(p)
	require.NoError(t, err)
	assert.Equal(t, StepAIPreferences, step)

	step, err = svc.Next(p)
	require.NoError(t, err)
	assert.Equal(t, StepAIPreferences, step, "the last step stays put")
	assert.Equal(t, 2, f.st.State().Onboarding.Step)

	assert.Equal(t, StepGoals, svc.Back())
	assert.Equal(t, StepSchedule, svc.Back())
	assert.Equal(t, StepSchedule, svc.Back())
}

func TestOnboardingComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.svc.Onboarding

	err := svc.Complete(ctx, completePreferences())
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)

	u := f.signIn(t, "ada")

	incomplete := completePreferences()
	incomplete.Categories = nil
	err = svc.Complete(ctx, incomplete)
	requireNotice(t, err, apperrors.ErrorTypeValidation)
	assert.Empty(t, f.fake.Rows("user_preferences"))

	require.NoError(t, svc.Complete(ctx, completePreferences()))
	require.NoError(t, svc.Complete(ctx, completePreferences()))

	rows := f.fake.Rows("user_preferences")
	require.Len(t, rows, 1, "preferences are upserted on user_id")
	assert.Equal(t, u.ID, rows[0]["user_id"])
	assert.Equal(t, []interface{}{"productivity", "health"}, rows[0]["focus_areas"])
	assert.Equal(t, []interface{}{"meal-planning"}, rows[0]["preferred_categories"])
	assert.Equal(t, "sometimes", rows[0]["suggestions_frequency"])

	for _, p := range f.fake.Rows("profiles") {
		if p["id"] == u.ID {
			assert.Equal(t, true, p["onboarding_completed"])
		}
	}
	state := f.st.State()
	assert.True(t, state.Onboarding.Completed)
	require.NotEmpty(t, state.Notifications.Items)
	assert.Equal(t, "Setup completed successfully!", state.Notifications.Items[0].Message)

	saved, found, err := svc.Saved(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "07:00", saved.DailyRoutinePreferences.Data().WakeTime)
	assert.Equal(t, []string{"productivity", "health"}, []string(saved.FocusAreas))
}

func TestOnboardingCompleteKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.fake.FailOn("profiles", remote.OpUpdate, &remote.Error{Message: "unavailable", Status: 503})

	err := f.svc.Onboarding.Complete(ctx, completePreferences())
	notice := requireNotice(t, err, apperrors.ErrorTypeServer)
	assert.Equal(t, "Failed to complete setup", notice.Message)
	assert.False(t, f.st.State().Onboarding.Completed)
	assert.Empty(t, f.st.State().Notifications.Items)
}
