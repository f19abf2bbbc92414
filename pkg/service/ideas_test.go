package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

func seedIdea(f *fixture, id, userID, title, category string, day int, tags ...string) {
	f.fake.Seed("ideas", models.Idea{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: title + " described",
		Category:    category,
		Tags:        tags,
		CreatedAt:   at(day),
		UpdatedAt:   at(day),
	})
}

func titles(ideas []IdeaSummary) []string {
	out := make([]string, 0, len(ideas))
	for _, i := range ideas {
		out = append(out, i.Title)
	}
	return out
}

func validInput() IdeaInput {
	return IdeaInput{
		Title:       "Meal planner bot",
		Description: "Plans a week of dinners",
		Category:    "Health & Wellness",
		Tags:        []string{"food", "planning"},
	}
}

func TestQuickSearchQuery(t *testing.T) {
	assert.Equal(t, "ai:* & tools:*", QuickSearchQuery("  ai   tools "))
	assert.Equal(t, "meal:*", QuickSearchQuery("meal"))
	assert.Equal(t, "", QuickSearchQuery("   "))
}

func TestIdeaInputNormalize(t *testing.T) {
	in := validInput()
	in.Title = "  Meal planner bot  "
	in.Tags = []string{" food", "food", "", "planning "}

	out, err := in.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Meal planner bot", out.Title)
	assert.Equal(t, []string{"food", "planning"}, out.Tags)

	tests := []struct {
		name  string
		edit  func(*IdeaInput)
		field string
	}{
		{"empty title", func(i *IdeaInput) { i.Title = "   " }, "title"},
		{"long title", func(i *IdeaInput) { i.Title = strings.Repeat("x", 201) }, "title"},
		{"empty description", func(i *IdeaInput) { i.Description = "" }, "description"},
		{"unknown category", func(i *IdeaInput) { i.Category = "Gardening" }, "category"},
		{"too many tags", func(i *IdeaInput) { i.Tags = []string{"a", "b", "c", "d", "e", "f"} }, "tags"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := in.Normalize()
			notice := requireNotice(t, err, apperrors.ErrorTypeValidation)
			assert.Contains(t, notice.Message, tc.field)
		})
	}
}

func TestCreateIdeaRequiresSignIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ideas.Create(context.Background(), validInput())
	requireNotice(t, err, apperrors.ErrorTypeUnauthorized)
	assert.Zero(t, f.fake.CallCount("ideas", remote.OpInsert))
}

func TestCreateIdea(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signIn(t, "ada")

	idea, err := f.svc.Ideas.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, idea.ID)
	assert.Equal(t, u.ID, idea.UserID)
	assert.Equal(t, models.StringArray{"food", "planning"}, idea.Tags)

	feed := f.st.State().Notifications
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "idea", feed.Items[0].Kind)
	assert.Equal(t, "Your idea was shared successfully!", feed.Items[0].Message)
	assert.Equal(t, 1, feed.Unread)

	activity := f.fake.Rows("user_activity")
	require.Len(t, activity, 1)
	assert.EqualValues(t, 1, activity[0]["count"])
}

func TestCreateIdeaFailureIsNotice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	f.fake.FailOn("ideas", remote.OpInsert, &remote.Error{Code: "XX000", Message: "relation ideas is on fire", Status: 500})

	_, err := f.svc.Ideas.Create(ctx, validInput())
	notice := requireNotice(t, err, apperrors.ErrorTypeServer)
	assert.Equal(t, "Failed to share idea", notice.Message)
	assert.Empty(t, f.st.State().Notifications.Items)
}

func TestListIdeas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ada := f.signIn(t, "ada")
	seedIdea(f, "i1", ada.ID, "Budget tracker", "Finance", 1, "money")
	seedIdea(f, "i2", ada.ID, "Habit coach", "Productivity", 3, "habits", "ai")
	seedIdea(f, "i3", "ghost", "Study buddy", "Education", 2, "ai")

	all, err := f.svc.Ideas.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Habit coach", "Study buddy", "Budget tracker"}, titles(all))
	require.NotNil(t, all[0].Author)
	assert.Equal(t, "ada", all[0].Author.Username)
	assert.Nil(t, all[1].Author, "authors without a profile are left empty")

	finance, err := f.svc.Ideas.List(ctx, ListOptions{Category: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Budget tracker"}, titles(finance))

	tagged, err := f.svc.Ideas.List(ctx, ListOptions{Tags: []string{"ai"}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Habit coach"}, titles(tagged))
}

func TestGetIdeaDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedIdea(f, "i1", "author-1", "Habit coach", "Productivity", 1)
	f.fake.Seed("profiles", models.Profile{ID: "author-1", Username: "grace"})
	f.fake.Seed("idea_ratings",
		models.IdeaRating{ID: "r1", UserID: "u1", IdeaID: "i1", Rating: 4},
		models.IdeaRating{ID: "r2", UserID: "u2", IdeaID: "i1", Rating: 5},
		models.IdeaRating{ID: "r3", UserID: "u2", IdeaID: "other", Rating: 1},
	)
	f.fake.Seed("comments",
		models.Comment{ID: "c1", IdeaID: "i1", UserID: "u1", Content: "nice"},
		models.Comment{ID: "c2", IdeaID: "i1", UserID: "u2", Content: "love it"},
	)
	f.fake.Seed("favorites", models.Favorite{ID: "f1", UserID: "u1", IdeaID: "i1"})

	detail, err := f.svc.Ideas.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Habit coach", detail.Title)
	require.NotNil(t, detail.Author)
	assert.Equal(t, "grace", detail.Author.Username)
	assert.InDelta(t, 4.5, detail.Rating, 0.001)
	assert.Equal(t, 2, detail.RatingsCount)
	assert.EqualValues(t, 2, detail.CommentsCount)
	assert.EqualValues(t, 1, detail.FavoritesCount)
	assert.Empty(t, f.fake.Rows("idea_views"), "anonymous views are not recorded")

	u := f.signIn(t, "ada")
	_, err = f.svc.Ideas.Get(ctx, "i1")
	require.NoError(t, err)
	views := f.fake.Rows("idea_views")
	require.Len(t, views, 1)
	assert.Equal(t, u.ID, views[0]["user_id"])
	assert.Equal(t, "i1", views[0]["idea_id"])

	_, err = f.svc.Ideas.Get(ctx, "missing")
	requireNotice(t, err, apperrors.ErrorTypeNotFound)
}

func TestGetIdeaSurvivesViewFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, "ada")
	seedIdea(f, "i1", "author-1", "Habit coach", "Productivity", 1)
	f.fake.FailOn("idea_views", remote.OpInsert, &remote.Error{Message: "boom", Status: 500})

	_, err := f.svc.Ideas.Get(ctx, "i1")
	assert.NoError(t, err)
}

func TestUpdateIdeaOnlyOwn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signIn(t, "ada")
	seedIdea(f, "mine", u.ID, "Habit coach", "Productivity", 1)
	seedIdea(f, "theirs", "someone-else", "Study buddy", "Education", 2)

	in := validInput()
	in.Title = "Habit coach 2"
	idea, err := f.svc.Ideas.Update(ctx, "mine", in)
	require.NoError(t, err)
	assert.Equal(t, "Habit coach 2", idea.Title)
	assert.Equal(t, "Health & Wellness", idea.Category)

	_, err = f.svc.Ideas.Update(ctx, "theirs", in)
	notice := requireNotice(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, "Failed to update idea", notice.Message)
	for _, r := range f.fake.Rows("ideas") {
		if r["id"] == "theirs" {
			assert.Equal(t, "Study buddy", r["title"])
		}
	}
}

func TestMineNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signIn(t, "ada")
	seedIdea(f, "a", u.ID, "Older", "Finance", 1)
	seedIdea(f, "b", u.ID, "Newer", "Finance", 5)
	seedIdea(f, "c", "x", "Not mine", "Finance", 9)

	ideas, err := f.svc.Ideas.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Newer", ideas[0].Title)
	assert.Equal(t, "Older", ideas[1].Title)
}

func TestQuickSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i, title := range []string{"AI tutor", "AI chef", "AI gardener", "AI coach", "AI banker", "AI poet", "Paper planner"} {
		seedIdea(f, title, "u", title, "Technology", i+1)
	}

	f.svc.Ideas.searches = metrics.NewSearchRecorder()

	results, err := f.svc.Ideas.QuickSearch(ctx, "ai")
	require.NoError(t, err)
	assert.Len(t, results, QuickSearchLimit)

	calls := f.fake.Calls()
	last := calls[len(calls)-2] // the profiles lookup follows the search
	require.Equal(t, "ideas", last.Table)
	require.Len(t, last.Filters, 1)
	assert.Equal(t, remote.FilterTextSearch, last.Filters[0].Op)
	assert.Equal(t, "ai:*", last.Filters[0].Value)
	assert.Equal(t, remote.SearchWebsearch, last.Filters[0].Search.Type)
	assert.Equal(t, "english", last.Filters[0].Search.Config)

	results, err = f.svc.Ideas.QuickSearch(ctx, "pap plan")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paper planner"}, titles(results))

	results, err = f.svc.Ideas.QuickSearch(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, results)

	stats := f.svc.Ideas.searches.Stats()
	assert.EqualValues(t, 2, stats.ByType[metrics.SearchQuick], "blank input never reaches the backend")
	assert.EqualValues(t, QuickSearchLimit+1, stats.Results)
}

func TestSearchNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedIdea(f, "a", "u", "Recipe finder", "Health & Wellness", 1)
	seedIdea(f, "b", "u", "Recipe scaler", "Health & Wellness", 4)
	seedIdea(f, "c", "u", "Budget tracker", "Finance", 3)

	results, err := f.svc.Ideas.Search(ctx, "recipe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Recipe scaler", "Recipe finder"}, titles(results))
}
