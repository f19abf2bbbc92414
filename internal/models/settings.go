package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserSettings is the remote settings row. Every preference column is nullable;
// readers fill missing values from their own defaults.
type UserSettings struct {
	UserID             string  `gorm:"primaryKey;type:uuid" json:"user_id"`
	Theme              *string `json:"theme"`
	FontSize           *string `json:"font_size"`
	EmailNotifications *bool   `json:"email_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
	InAppNotifications *bool   `json:"in_app_notifications"`
	ReduceMotion       *bool   `json:"reduce_motion"`
	HighContrast       *bool   `json:"high_contrast"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DailySchedule is the schedule step of onboarding
type DailySchedule struct {
	WakeTime        string   `json:"wakeTime"`
	SleepTime       string   `json:"sleepTime"`
	ProductiveHours []string `json:"productiveHours"`
}

// UserPreferences holds what a user chose during onboarding
type UserPreferences struct {
	ID                      string                             `gorm:"primaryKey;type:uuid" json:"id"`
	UserID                  string                             `gorm:"uniqueIndex;not null" json:"user_id"`
	DailyRoutinePreferences datatypes.JSONType[DailySchedule] `json:"daily_routine_preferences"`
	SuggestionsFrequency    string                             `json:"suggestions_frequency"`
	FocusAreas              StringArray                        `json:"focus_areas"`
	PreferredCategories     StringArray                        `json:"preferred_categories"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
