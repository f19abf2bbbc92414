package store

import (
	"time"

	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// Theme is the color scheme preference
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// FontSize is the text size preference
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Valid reports whether f is a known font size
func (f FontSize) Valid() bool {
	switch f {
	case FontSmall, FontMedium, FontLarge:
		return true
	}
	return false
}

type NotificationSettings struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	InApp bool `json:"inApp"`
}

type AccessibilitySettings struct {
	ReduceMotion bool `json:"reduceMotion"`
	HighContrast bool `json:"highContrast"`
}

// Settings are the user's display and notification preferences. Always fully populated.
type Settings struct {
	Theme         Theme                 `json:"theme"`
	FontSize      FontSize              `json:"fontSize"`
	Notifications NotificationSettings  `json:"notifications"`
	Accessibility AccessibilitySettings `json:"accessibility"`
}

// DefaultSettings returns the settings of a fresh install
func DefaultSettings() Settings {
	return Settings{
		Theme:    ThemeSystem,
		FontSize: FontMedium,
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
			InApp: true,
		},
	}
}

// Normalize replaces unknown enum values with their defaults
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if !s.Theme.Valid() {
		s.Theme = d.Theme
	}
	if !s.FontSize.Valid() {
		s.FontSize = d.FontSize
	}
	return s
}

// SettingsPatch names the top-level settings keys to replace. Nil keys are untouched.
type SettingsPatch struct {
	Theme         *Theme                 `json:"theme,omitempty"`
	FontSize      *FontSize              `json:"fontSize,omitempty"`
	Notifications *NotificationSettings  `json:"notifications,omitempty"`
	Accessibility *AccessibilitySettings `json:"accessibility,omitempty"`
}

// Empty reports whether the patch touches nothing
func (p SettingsPatch) Empty() bool {
	return p.Theme == nil && p.FontSize == nil && p.Notifications == nil && p.Accessibility == nil
}

// Apply shallow-merges p over s
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.Accessibility != nil {
		s.Accessibility = *p.Accessibility
	}
	return s
}

// FillFrom overlays the non-null columns of a remote settings row
func (s Settings) FillFrom(row *models.UserSettings) Settings {
	if row == nil {
		return s
	}
	if row.Theme != nil && Theme(*row.Theme).Valid() {
		s.Theme = Theme(*row.Theme)
	}
	if row.FontSize != nil && FontSize(*row.FontSize).Valid() {
		s.FontSize = FontSize(*row.FontSize)
	}
	if row.EmailNotifications != nil {
		s.Notifications.Email = *row.EmailNotifications
	}
	if row.PushNotifications != nil {
		s.Notifications.Push = *row.PushNotifications
	}
	if row.InAppNotifications != nil {
		s.Notifications.InApp = *row.InAppNotifications
	}
	if row.ReduceMotion != nil {
		s.Accessibility.ReduceMotion = *row.ReduceMotion
	}
	if row.HighContrast != nil {
		s.Accessibility.HighContrast = *row.HighContrast
	}
	return s
}

// Row converts settings to the remote row for userID
func (s Settings) Row(userID string) models.UserSettings {
	theme := string(s.Theme)
	font := string(s.FontSize)
	n, a := s.Notifications, s.Accessibility
	return models.UserSettings{
		UserID:             userID,
		Theme:              &theme,
		FontSize:           &font,
		EmailNotifications: &n.Email,
		PushNotifications:  &n.Push,
		InAppNotifications: &n.InApp,
		ReduceMotion:       &a.ReduceMotion,
		HighContrast:       &a.HighContrast,
		UpdatedAt:          time.Now().UTC(),
	}
}

// Onboarding is the local onboarding progress
type Onboarding struct {
	Step      int  `json:"step"`
	Completed bool `json:"completed"`
}

// Notification is one local feed item
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifications is the feed, newest first, with its unread counter
type Notifications struct {
	Items  []Notification `json:"items"`
	Unread int            `json:"unread"`
}

// State is a snapshot of the store
type State struct {
	User          *remote.User    `json:"user"`
	Profile       *models.Profile `json:"profile"`
	Settings      Settings        `json:"settings"`
	Onboarding    Onboarding      `json:"onboarding"`
	Notifications Notifications   `json:"notifications"`
}

func initialState() State {
	return State{
		Settings:      DefaultSettings(),
		Notifications: Notifications{Items: []Notification{}},
	}
}

func (s State) clone() State {
	c := s
	if s.User != nil {
		u := *s.User
		u.UserMetadata = copyMap(s.User.UserMetadata)
		c.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		p.Extra = copyMap(s.Profile.Extra)
		c.Profile = &p
	}
	c.Notifications.Items = append(make([]Notification, 0, len(s.Notifications.Items)), s.Notifications.Items...)
	return c
}

func copyMap[M ~map[string]interface{}](m M) M {
	if m == nil {
		return nil
	}
	c := make(M, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
