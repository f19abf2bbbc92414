package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

const (
	// MaxTags is the most tags an idea may carry
	MaxTags = 5
	// QuickSearchLimit caps the results of the search-as-you-type box
	QuickSearchLimit = 5
	maxTitleLength   = 200
)

// Categories are the idea categories offered when sharing an idea
var Categories = []string{
	"Productivity",
	"Health & Wellness",
	"Education",
	"Finance",
	"Entertainment",
	"Social",
	"Sustainability",
	"Business",
	"Creative",
	"Technology",
}

// IdeaAuthor is the public part of an author's profile
type IdeaAuthor struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// IdeaSummary is an idea with its author, as shown in lists
type IdeaSummary struct {
	models.Idea
	Author *IdeaAuthor `json:"author,omitempty"`
}

// IdeaDetail is everything the idea page shows
type IdeaDetail struct {
	models.Idea
	Author         *IdeaAuthor `json:"author,omitempty"`
	Rating         float64     `json:"rating"`
	RatingsCount   int         `json:"ratings_count"`
	CommentsCount  int64       `json:"comments_count"`
	FavoritesCount int64       `json:"favorites_count"`
}

// IdeaInput is the editable part of an idea
type IdeaInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Normalize trims every field, drops empty and repeated tags and validates the result
func (in IdeaInput) Normalize() (IdeaInput, error) {
	out := IdeaInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Tags:        []string{},
	}

	switch {
	case out.Title == "":
		return out, apperrors.ValidationError("title", "cannot be empty")
	case len(out.Title) > maxTitleLength:
		return out, apperrors.ValidationError("title", "must be at most 200 characters")
	case out.Description == "":
		return out, apperrors.ValidationError("description", "cannot be empty")
	case !IsCategory(out.Category):
		return out, apperrors.ValidationError("category", "must be one of: "+strings.Join(Categories, ", "))
	}

	seen := make(map[string]bool, len(in.Tags))
	for _, tag := range in.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out.Tags = append(out.Tags, tag)
	}
	if len(out.Tags) > MaxTags {
		return out, apperrors.ValidationError("tags", "maximum 5 tags allowed")
	}
	return out, nil
}

func (in IdeaInput) values() map[string]interface{} {
	return map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"tags":        in.Tags,
	}
}

// IsCategory reports whether c is a known category
func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ListOptions filters the idea list
type ListOptions struct {
	Category string
	Tags     []string
	Limit    int
}

// IdeaService reads and writes shared ideas
type IdeaService struct {
	base
	now      func() time.Time
	activity *ActivityService
	searches *metrics.SearchRecorder
}

// NewIdeaService creates a new idea service
func NewIdeaService(client remote.Client, st *store.Store, log *zap.Logger) *IdeaService {
	return &IdeaService{base: newBase(client, st, log), now: time.Now, searches: metrics.Searches()}
}

// List returns ideas newest first, optionally narrowed to a category and tags
func (s *IdeaService) List(ctx context.Context, opts ListOptions) ([]IdeaSummary, error) {
	q := s.client.From("ideas").Order("created_at", false)
	if opts.Category != "" {
		q = q.Eq("category", opts.Category)
	}
	if len(opts.Tags) > 0 {
		q = q.Contains("tags", opts.Tags)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var ideas []models.Idea
	if err := q.Find(ctx, &ideas); err != nil {
		return nil, s.fail("load ideas", err, logger.WithTable("ideas"))
	}
	return s.withAuthors(ctx, ideas)
}

// Get loads one idea with its author, rating and counters. A signed-in
// reader's visit is recorded; failing to record it is only logged.
func (s *IdeaService) Get(ctx context.Context, id string) (*IdeaDetail, error) {
	ctx, span := s.events.TraceIdea(ctx, "view", telemetry.IdeaEventAttrs{IdeaID: id})
	detail, err := s.detail(ctx, id)
	telemetry.End(span, err)
	if err != nil {
		return nil, err
	}

	if uid, err := s.userID(); err == nil {
		s.recordView(ctx, id, uid)
	}
	return detail, nil
}

func (s *IdeaService) detail(ctx context.Context, id string) (*IdeaDetail, error) {
	var idea models.Idea
	found, err := s.client.From("ideas").Eq("id", id).MaybeSingle(ctx, &idea)
	if err != nil {
		return nil, s.fail("load idea", err, logger.WithIdeaID(id))
	}
	if !found {
		return nil, apperrors.NotFoundError("Idea", id)
	}

	detail := &IdeaDetail{Idea: idea}

	authors, err := s.authors(ctx, []string{idea.UserID})
	if err != nil {
		return nil, s.fail("load idea", err, logger.WithIdeaID(id), logger.WithTable("profiles"))
	}
	detail.Author = authors[idea.UserID]

	var ratings []struct {
		Rating int `json:"rating"`
	}
	if err := s.client.From("idea_ratings").Select("rating").Eq("idea_id", id).Find(ctx, &ratings); err != nil {
		return nil, s.fail("load idea", err, logger.WithIdeaID(id), logger.WithTable("idea_ratings"))
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Rating
		}
		detail.Rating = float64(sum) / float64(len(ratings))
		detail.RatingsCount = len(ratings)
	}

	if detail.CommentsCount, err = s.client.From("comments").Eq("idea_id", id).Count(ctx); err != nil {
		return nil, s.fail("load idea", err, logger.WithIdeaID(id), logger.WithTable("comments"))
	}
	if detail.FavoritesCount, err = s.client.From("favorites").Eq("idea_id", id).Count(ctx); err != nil {
		return nil, s.fail("load idea", err, logger.WithIdeaID(id), logger.WithTable("favorites"))
	}
	return detail, nil
}

func (s *IdeaService) recordView(ctx context.Context, ideaID, userID string) {
	err := s.client.From("idea_views").Insert(ctx, map[string]interface{}{
		"idea_id":   ideaID,
		"user_id":   userID,
		"viewed_at": s.now().UTC(),
	}, nil)
	if err != nil {
		s.log.Warn("Failed to record idea view", logger.WithIdeaID(ideaID), logger.WithUserID(userID), zap.Error(err))
	}
}

// Create shares a new idea by the signed-in user
func (s *IdeaService) Create(ctx context.Context, in IdeaInput) (*models.Idea, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, span := s.events.TraceIdea(ctx, "create", telemetry.IdeaEventAttrs{
		UserID:   uid,
		Category: in.Category,
		TagCount: len(in.Tags),
	})
	row := in.values()
	row["user_id"] = uid

	var idea models.Idea
	err = s.client.From("ideas").Insert(ctx, row, &idea)
	telemetry.End(span, err)
	if err != nil {
		return nil, s.fail("share idea", err, logger.WithUserID(uid))
	}

	s.store.AddNotification("idea", "Your idea was shared successfully!")
	if s.activity != nil {
		s.activity.Record(ctx)
	}
	s.log.Info("Idea shared", logger.WithUserID(uid), logger.WithIdeaID(idea.ID))
	return &idea, nil
}

// Update replaces the editable fields of one of the signed-in user's ideas
func (s *IdeaService) Update(ctx context.Context, id string, in IdeaInput) (*models.Idea, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, span := s.events.TraceIdea(ctx, "update", telemetry.IdeaEventAttrs{
		IdeaID:   id,
		UserID:   uid,
		Category: in.Category,
		TagCount: len(in.Tags),
	})
	var idea models.Idea
	err = s.client.From("ideas").Eq("id", id).Eq("user_id", uid).Update(ctx, in.values(), &idea)
	telemetry.End(span, err)
	if err != nil {
		return nil, s.fail("update idea", err, logger.WithUserID(uid), logger.WithIdeaID(id))
	}
	return &idea, nil
}

// Mine returns the signed-in user's ideas, newest first
func (s *IdeaService) Mine(ctx context.Context) ([]models.Idea, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	ideas := []models.Idea{}
	err = s.client.From("ideas").Eq("user_id", uid).Order("created_at", false).Find(ctx, &ideas)
	if err != nil {
		return nil, s.fail("load your ideas", err, logger.WithUserID(uid))
	}
	return ideas, nil
}

// QuickSearchQuery turns free text into a prefix tsquery: "ai tools" -> "ai:* & tools:*"
func QuickSearchQuery(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = w + ":*"
	}
	return strings.Join(words, " & ")
}

// QuickSearch matches title prefixes for search-as-you-type, at most QuickSearchLimit results
func (s *IdeaService) QuickSearch(ctx context.Context, term string) ([]IdeaSummary, error) {
	query := QuickSearchQuery(term)
	if query == "" {
		return []IdeaSummary{}, nil
	}

	ctx, span := s.events.TraceSearch(ctx, term, true)
	start := s.now()
	var ideas []models.Idea
	err := s.client.From("ideas").
		Select("id,title,category,user_id").
		TextSearch("title", query, remote.TextSearchOptions{Type: remote.SearchWebsearch, Config: "english"}).
		Limit(QuickSearchLimit).
		Find(ctx, &ideas)
	telemetry.End(span, err)
	s.searches.Record(metrics.SearchQuery{Type: metrics.SearchQuick, Results: len(ideas), Duration: s.now().Sub(start), Err: err})
	if err != nil {
		return nil, s.fail("search ideas", err)
	}
	return s.withAuthors(ctx, ideas)
}

// Search matches titles against term, newest first
func (s *IdeaService) Search(ctx context.Context, term string) ([]IdeaSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []IdeaSummary{}, nil
	}

	ctx, span := s.events.TraceSearch(ctx, term, false)
	start := s.now()
	var ideas []models.Idea
	err := s.client.From("ideas").
		TextSearch("title", term, remote.TextSearchOptions{}).
		Order("created_at", false).
		Find(ctx, &ideas)
	telemetry.End(span, err)
	s.searches.Record(metrics.SearchQuery{Type: metrics.SearchFull, Results: len(ideas), Duration: s.now().Sub(start), Err: err})
	if err != nil {
		return nil, s.fail("search ideas", err)
	}
	return s.withAuthors(ctx, ideas)
}

func (s *IdeaService) withAuthors(ctx context.Context, ideas []models.Idea) ([]IdeaSummary, error) {
	ids := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		ids = append(ids, idea.UserID)
	}
	authors, err := s.authors(ctx, ids)
	if err != nil {
		return nil, s.fail("load ideas", err, logger.WithTable("profiles"))
	}

	out := make([]IdeaSummary, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, IdeaSummary{Idea: idea, Author: authors[idea.UserID]})
	}
	return out, nil
}

// authors loads the profiles of userIDs keyed by id. Unknown ids are absent.
func (s *IdeaService) authors(ctx context.Context, userIDs []string) (map[string]*IdeaAuthor, error) {
	return loadAuthors(ctx, s.client, userIDs)
}

func loadAuthors(ctx context.Context, client remote.Client, userIDs []string) (map[string]*IdeaAuthor, error) {
	seen := make(map[string]bool, len(userIDs))
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	out := make(map[string]*IdeaAuthor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []IdeaAuthor
	if err := client.From("profiles").Select("id,username,avatar_url").In("id", ids).Find(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
