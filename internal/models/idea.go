package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Idea is a shared AI idea
type Idea struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"index" json:"category"`
	Tags        StringArray `json:"tags"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Idea) TableName() string {
	return "ideas"
}

func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IdeaRating is one user's 1-5 rating of an idea
type IdeaRating struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_idea" json:"user_id"`
	IdeaID string `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_idea;index" json:"idea_id"`
	Rating int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (IdeaRating) TableName() string {
	return "idea_ratings"
}

func (r *IdeaRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Favorite marks an idea as saved by a user
type Favorite struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_idea" json:"user_id"`
	IdeaID string `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_idea;index" json:"idea_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Comment on an idea
type Comment struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	IdeaID  string `gorm:"type:uuid;not null;index" json:"idea_id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IdeaView records that a signed-in user opened an idea
type IdeaView struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	IdeaID   string    `gorm:"type:uuid;not null;index" json:"idea_id"`
	UserID   string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ViewedAt time.Time `gorm:"not null" json:"viewed_at"`
}

func (IdeaView) TableName() string {
	return "idea_views"
}

func (v *IdeaView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.ViewedAt.IsZero() {
		v.ViewedAt = time.Now().UTC()
	}
	return nil
}

// SavedPrompt is a prompt kept from the prompt builder
type SavedPrompt struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

func (SavedPrompt) TableName() string {
	return "saved_prompts"
}

func (p *SavedPrompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
