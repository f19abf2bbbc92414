package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/formatter"
	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/service"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

var now = time.Now

func authorName(a *service.IdeaAuthor) string {
	if a == nil || a.Username == "" {
		return "anonymous"
	}
	return a.Username
}

func printUser(u *remote.User, p *models.Profile) error {
	fields := []output.Field{
		{Key: "id", Value: u.ID},
		{Key: "email", Value: u.Email},
	}
	if p != nil {
		fields = append(fields,
			output.Field{Key: "username", Value: p.Username},
			output.Field{Key: "avatar", Value: p.AvatarURL},
			output.Field{Key: "onboarding completed", Value: formatter.YesNo(p.OnboardingCompleted)},
		)
	}
	if !u.CreatedAt.IsZero() {
		fields = append(fields, output.Field{Key: "member since", Value: u.CreatedAt.Format("Jan 2, 2006")})
	}
	return output.PrintRecord("Signed in", fields)
}

func printSettings(s store.Settings) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", s)
	}
	return output.PrintRecord("Settings", []output.Field{
		{Key: "theme", Value: s.Theme},
		{Key: "font size", Value: s.FontSize},
		{Key: "email notifications", Value: formatter.YesNo(s.Notifications.Email)},
		{Key: "push notifications", Value: formatter.YesNo(s.Notifications.Push)},
		{Key: "in-app notifications", Value: formatter.YesNo(s.Notifications.InApp)},
		{Key: "reduce motion", Value: formatter.YesNo(s.Accessibility.ReduceMotion)},
		{Key: "high contrast", Value: formatter.YesNo(s.Accessibility.HighContrast)},
	})
}

func printIdeaSummaries(ideas []service.IdeaSummary) error {
	rows := make([][]string, 0, len(ideas))
	for _, i := range ideas {
		rows = append(rows, []string{
			i.ID,
			formatter.Truncate(i.Title, 40),
			i.Category,
			authorName(i.Author),
			formatter.Ago(i.CreatedAt, now()),
		})
	}
	return output.PrintTable([]string{"ID", "TITLE", "CATEGORY", "AUTHOR", "SHARED"}, rows, ideas)
}

func printIdeas(ideas []models.Idea) error {
	rows := make([][]string, 0, len(ideas))
	for _, i := range ideas {
		rows = append(rows, []string{
			i.ID,
			formatter.Truncate(i.Title, 40),
			i.Category,
			formatter.Tags(i.Tags),
			formatter.Ago(i.CreatedAt, now()),
		})
	}
	return output.PrintTable([]string{"ID", "TITLE", "CATEGORY", "TAGS", "SHARED"}, rows, ideas)
}

func printIdeaDetail(d *service.IdeaDetail, favorite bool, mine int) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", struct {
			*service.IdeaDetail
			Favorite bool `json:"favorite"`
			MyRating int  `json:"my_rating"`
		}{d, favorite, mine})
	}

	rating := fmt.Sprintf("%s %.1f (%d)", formatter.Stars(d.Rating), d.Rating, d.RatingsCount)
	fields := []output.Field{
		{Key: "id", Value: d.ID},
		{Key: "category", Value: d.Category},
		{Key: "author", Value: authorName(d.Author)},
		{Key: "shared", Value: formatter.Ago(d.CreatedAt, now())},
		{Key: "tags", Value: formatter.Tags(d.Tags)},
		{Key: "rating", Value: rating},
		{Key: "comments", Value: d.CommentsCount},
		{Key: "favorites", Value: d.FavoritesCount},
	}
	if mine > 0 {
		fields = append(fields, output.Field{Key: "your rating", Value: formatter.Stars(float64(mine))})
	}
	if favorite {
		fields = append(fields, output.Field{Key: "saved", Value: formatter.YesNo(true)})
	}
	if err := output.PrintRecord(d.Title, fields); err != nil {
		return err
	}
	output.Println()
	output.Println(d.Description)
	return nil
}

func printComments(comments []service.CommentView) error {
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, []string{
			authorName(c.Author),
			formatter.Ago(c.CreatedAt, now()),
			formatter.Truncate(c.Content, 60),
		})
	}
	return output.PrintTable([]string{"AUTHOR", "WHEN", "COMMENT"}, rows, comments)
}

func printDashboard(d *service.Dashboard) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", d)
	}

	output.PrintHeading("Daily routines")
	rows := make([][]string, 0, len(d.Routines))
	for _, r := range d.Routines {
		rows = append(rows, []string{r.Name, formatter.YesNo(r.IsOptimized)})
	}
	if err := output.PrintTable([]string{"NAME", "OPTIMIZED"}, rows, nil); err != nil {
		return err
	}

	output.Println()
	output.PrintHeading("Goals")
	rows = make([][]string, 0, len(d.Goals))
	for _, g := range d.Goals {
		deadline := "-"
		if g.Deadline != nil {
			deadline = g.Deadline.Format("2006-01-02")
		}
		rows = append(rows, []string{
			formatter.Truncate(g.Title, 40),
			strconv.Itoa(g.Current) + "/" + strconv.Itoa(g.Target),
			formatter.ProgressBar(g.Progress(), 20),
			deadline,
		})
	}
	return output.PrintTable([]string{"GOAL", "DONE", "PROGRESS", "DEADLINE"}, rows, nil)
}

func printProfile(p *service.Profile) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", p)
	}

	counts := make([]int, len(p.Activity))
	total := 0
	for i, a := range p.Activity {
		counts[i] = a.Count
		total += a.Count
	}
	since := "-"
	if len(p.Activity) > 0 {
		since = p.Activity[0].Date
	}

	username := ""
	if p.Profile != nil {
		username = p.Profile.Username
	}
	if err := output.PrintRecord(username, []output.Field{
		{Key: "ideas shared", Value: len(p.Ideas)},
		{Key: "active days", Value: len(p.Activity)},
		{Key: "actions", Value: total},
		{Key: "since", Value: since},
		{Key: "activity", Value: "|" + formatter.Heatmap(counts) + "|"},
	}); err != nil {
		return err
	}
	if len(p.Ideas) == 0 {
		return nil
	}
	output.Println()
	return printIdeas(p.Ideas)
}

func printPrompts(prompts []models.SavedPrompt) error {
	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, []string{p.ID, formatter.Ago(p.CreatedAt, now()), formatter.Truncate(p.Content, 60)})
	}
	return output.PrintTable([]string{"ID", "SAVED", "PROMPT"}, rows, prompts)
}

func printPreferences(p service.Preferences) error {
	return output.PrintRecord("Preferences", []output.Field{
		{Key: "wake time", Value: p.Schedule.WakeTime},
		{Key: "sleep time", Value: p.Schedule.SleepTime},
		{Key: "productive hours", Value: strings.Join(p.Schedule.ProductiveHours, ", ")},
		{Key: "goals", Value: strings.Join(p.Goals, ", ")},
		{Key: "suggestions", Value: p.SuggestionsFrequency},
		{Key: "categories", Value: strings.Join(p.Categories, ", ")},
	})
}
