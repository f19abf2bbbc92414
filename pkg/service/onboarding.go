package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// OnboardingStep names one page of the onboarding flow
type OnboardingStep string

const (
	StepSchedule      OnboardingStep = "schedule"
	StepGoals         OnboardingStep = "goals"
	StepAIPreferences OnboardingStep = "ai-preferences"
)

// OnboardingSteps lists the flow in order; the store's step is an index into it
var OnboardingSteps = []OnboardingStep{StepSchedule, StepGoals, StepAIPreferences}

// Choices offered by the flow
var (
	ProductivePeriods     = []string{"morning", "afternoon", "evening"}
	GoalOptions           = []string{"productivity", "health", "learning", "organization"}
	SuggestionFrequencies = []string{"rarely", "sometimes", "often"}
	AssistCategories      = []string{"daily-routine", "meal-planning", "exercise", "learning", "productivity", "home"}
)

// Preferences is what the user picks during onboarding
type Preferences struct {
	Schedule             models.DailySchedule `json:"schedule"`
	Goals                []string             `json:"goals"`
	SuggestionsFrequency string               `json:"suggestions_frequency"`
	Categories           []string             `json:"categories"`
}

// DefaultPreferences returns the values the flow starts from
func DefaultPreferences() Preferences {
	return Preferences{
		Schedule: models.DailySchedule{
			WakeTime:        "07:00",
			SleepTime:       "22:00",
			ProductiveHours: []string{"morning"},
		},
		Goals:                []string{},
		SuggestionsFrequency: "sometimes",
		Categories:           []string{},
	}
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Validate checks the answers of one step
func (p Preferences) Validate(step OnboardingStep) error {
	switch step {
	case StepSchedule:
		s := p.Schedule
		if !validClock(s.WakeTime) || !validClock(s.SleepTime) || len(s.ProductiveHours) == 0 {
			return apperrors.ValidationError("schedule", "set your wake and sleep times and at least one productive period")
		}
	case StepGoals:
		if len(p.Goals) == 0 {
			return apperrors.ValidationError("goals", "select at least one goal")
		}
	case StepAIPreferences:
		if !oneOf(p.SuggestionsFrequency, SuggestionFrequencies) || len(p.Categories) == 0 {
			return apperrors.ValidationError("ai-preferences", "select suggestion frequency and at least one category")
		}
	default:
		return apperrors.ValidationError("step", "unknown onboarding step "+string(step))
	}
	return nil
}

// ValidateAll checks every step in order and returns the first failure
func (p Preferences) ValidateAll() error {
	for _, step := range OnboardingSteps {
		if err := p.Validate(step); err != nil {
			return err
		}
	}
	return nil
}

// OnboardingService drives the first-run flow
type OnboardingService struct {
	base
	now func() time.Time
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(client remote.Client, st *store.Store, log *zap.Logger) *OnboardingService {
	return &OnboardingService{base: newBase(client, st, log), now: time.Now}
}

// Status returns the local onboarding progress
func (s *OnboardingService) Status() store.Onboarding {
	return s.store.State().Onboarding
}

// Current returns the step the user is on
func (s *OnboardingService) Current() OnboardingStep {
	step := s.Status().Step
	if step < 0 || step >= len(OnboardingSteps) {
		return OnboardingSteps[0]
	}
	return OnboardingSteps[step]
}

// Next validates the current step against p and moves forward. On the last
// step it stays put; Complete finishes the flow.
func (s *OnboardingService) Next(p Preferences) (OnboardingStep, error) {
	step := s.Status().Step
	if step < 0 || step >= len(OnboardingSteps) {
		step = 0
	}
	if err := p.Validate(OnboardingSteps[step]); err != nil {
		return OnboardingSteps[step], err
	}
	if step < len(OnboardingSteps)-1 {
		step++
		s.store.SetOnboardingStep(step)
	}
	return OnboardingSteps[step], nil
}

// Back moves to the previous step
func (s *OnboardingService) Back() OnboardingStep {
	step := s.Status().Step
	if step > 0 {
		step--
		s.store.SetOnboardingStep(step)
	}
	if step >= len(OnboardingSteps) {
		step = len(OnboardingSteps) - 1
	}
	return OnboardingSteps[step]
}

// Complete saves p as the user's preferences and marks onboarding done
func (s *OnboardingService) Complete(ctx context.Context, p Preferences) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if err := p.ValidateAll(); err != nil {
		return err
	}

	ctx, span := s.events.TraceOnboarding(ctx, uid, len(p.Goals))
	err = s.save(ctx, uid, p)
	if err == nil {
		err = s.store.CompleteOnboarding(ctx)
	}
	telemetry.End(span, err)
	if err != nil {
		return s.fail("complete setup", err, logger.WithUserID(uid))
	}

	s.store.AddNotification("onboarding", "Setup completed successfully!")
	s.log.Info("Preferences saved", logger.WithUserID(uid),
		zap.Strings("focus_areas", p.Goals),
		zap.String("suggestions_frequency", p.SuggestionsFrequency))
	return nil
}

func (s *OnboardingService) save(ctx context.Context, uid string, p Preferences) error {
	return s.client.From("user_preferences").Upsert(ctx, map[string]interface{}{
		"user_id":                   uid,
		"daily_routine_preferences": p.Schedule,
		"suggestions_frequency":     p.SuggestionsFrequency,
		"focus_areas":               p.Goals,
		"preferred_categories":      p.Categories,
		"updated_at":                s.now().UTC(),
	}, []string{"user_id"}, nil)
}

// Saved loads the signed-in user's stored preferences; found is false before onboarding
func (s *OnboardingService) Saved(ctx context.Context) (*models.UserPreferences, bool, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, false, err
	}

	var row models.UserPreferences
	found, err := s.client.From("user_preferences").Eq("user_id", uid).MaybeSingle(ctx, &row)
	if err != nil {
		return nil, false, s.fail("load preferences", err, logger.WithUserID(uid))
	}
	if !found {
		return nil, false, nil
	}
	return &row, true, nil
}
