package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DailyRoutine is a named schedule shown on the dashboard
type DailyRoutine struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Schedule    datatypes.JSON `json:"schedule"`
	IsOptimized bool           `gorm:"default:false" json:"is_optimized"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyRoutine) TableName() string {
	return "daily_routines"
}

func (r *DailyRoutine) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Goal tracks progress toward a numeric target
type Goal struct {
	ID       string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string     `gorm:"not null" json:"title"`
	Target   int        `json:"target"`
	Current  int        `json:"current"`
	Deadline *time.Time `json:"deadline"`
	Category string     `json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Progress returns completion as a percentage capped at 100
func (g Goal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	p := float64(g.Current) / float64(g.Target) * 100
	if p > 100 {
		return 100
	}
	return p
}

// UserActivity is a per-day activity counter
type UserActivity struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_activity_user_date" json:"user_id"`
	Date   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_activity_user_date" json:"date"` // YYYY-MM-DD
	Count  int    `gorm:"not null;default:0" json:"count"`
}

func (UserActivity) TableName() string {
	return "user_activity"
}

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for migrations, in dependency order
func All() []interface{} {
	return []interface{}{
		&AuthUser{},
		&Profile{},
		&UserSettings{},
		&UserPreferences{},
		&Idea{},
		&IdeaRating{},
		&Favorite{},
		&Comment{},
		&IdeaView{},
		&SavedPrompt{},
		&DailyRoutine{},
		&Goal{},
		&UserActivity{},
	}
}
