package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/database"
	"github.com/0xAcousticbridge/GAID/internal/models"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/prompter"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/remote/remotetest"
	"github.com/0xAcousticbridge/GAID/pkg/service"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

type CLITestSuite struct {
	suite.Suite
	fake *remotetest.Client
	dir  string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

// fakeApp wires an app over client the way newApp does, minus tracing and persistence
func fakeApp(ctx context.Context, client remote.Client) (*app, error) {
	a := &app{log: zap.NewNop(), client: client}
	a.store = store.New(client)
	release, err := a.store.BindSession(ctx)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { release(); return nil })
	a.svc = service.New(client, a.store, a.log)
	return a, nil
}

func (s *CLITestSuite) SetupTest() {
	color.NoColor = true
	s.fake = remotetest.New()
	s.fake.Unique("favorites", "user_id", "idea_id")
	s.dir = s.T().TempDir()

	openApp = func(ctx context.Context) (*app, error) { return fakeApp(ctx, s.fake) }
	now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
}

func (s *CLITestSuite) TearDownTest() {
	openApp = newApp
	ask = prompter.Stdio
	now = time.Now
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with input as the answers to any prompts
func (s *CLITestSuite) run(input string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	restore := output.SetOutput(buf)
	defer restore()
	ask = func() *prompter.Prompter { return prompter.New(strings.NewReader(input), io.Discard) }

	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(s.dir, "config.toml")}, args...))
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

func (s *CLITestSuite) requireNotice(err error, want apperrors.ErrorType) {
	var cliErr *apperrors.CLIError
	s.Require().ErrorAs(err, &cliErr)
	s.Equal(want, cliErr.Type)
}

func (s *CLITestSuite) signIn(username string) *remote.User {
	u := s.fake.FakeAuth().AddUser(username+"@example.com", "secret1")
	s.fake.Seed("profiles", models.Profile{ID: u.ID, Username: username})
	s.fake.FakeAuth().SetSession(u)
	return u
}

func (s *CLITestSuite) seedIdea(id, title string) {
	s.fake.Seed("profiles", models.Profile{ID: "author", Username: "grace"})
	s.fake.Seed("ideas", models.Idea{
		ID:          id,
		UserID:      "author",
		Title:       title,
		Description: "Let an assistant plan it",
		Category:    "Productivity",
		Tags:        models.StringArray{"habits"},
		CreatedAt:   time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC),
	})
}

func (s *CLITestSuite) TestVersion() {
	out, err := s.run("", "version")
	s.Require().NoError(err)
	s.Equal("GoodAIdeas CLI v"+Version+"\n", out)

	out, err = s.run("", "-o", "json", "version")
	s.Require().NoError(err)
	s.JSONEq(`{"version":"`+Version+`"}`, out)
}

func (s *CLITestSuite) TestInvalidOutputFormat() {
	_, err := s.run("", "-o", "yaml", "version")
	s.requireNotice(err, apperrors.ErrorTypeValidation)
}

func (s *CLITestSuite) TestAuthFlow() {
	s.fake.FakeAuth().AddUser("ada@example.com", "secret1")

	_, err := s.run("", "auth", "me")
	s.requireNotice(err, apperrors.ErrorTypeUnauthorized)

	_, err = s.run("", "auth", "login", "--email", "ada@example.com", "--password", "wrong")
	s.requireNotice(err, apperrors.ErrorTypeAuth)

	out, err := s.run("ada@example.com\nsecret1\n", "auth", "login")
	s.Require().NoError(err)
	s.Contains(out, "Signed in as ada@example.com")

	out, err = s.run("", "auth", "me")
	s.Require().NoError(err)
	s.Contains(out, "email: ada@example.com")
	s.Contains(out, "onboarding completed: no")

	out, err = s.run("", "auth", "logout")
	s.Require().NoError(err)
	s.Contains(out, "Signed out")

	_, err = s.run("", "auth", "me")
	s.requireNotice(err, apperrors.ErrorTypeUnauthorized)
}

func (s *CLITestSuite) TestSignUp() {
	out, err := s.run("", "auth", "signup", "--email", "new@example.com", "--password", "secret1")
	s.Require().NoError(err)
	s.Contains(out, "Account created for new@example.com")

	_, err = s.run("", "auth", "signup", "--email", "new@example.com", "--password", "secret1")
	s.requireNotice(err, apperrors.ErrorTypeConflict)
}

func (s *CLITestSuite) TestSettings() {
	out, err := s.run("", "settings", "show")
	s.Require().NoError(err)
	s.Contains(out, "theme: system")

	out, err = s.run("", "settings", "set", "--theme", "dark", "--push-notifications=false")
	s.Require().NoError(err)
	s.Contains(out, "theme: dark")
	s.Contains(out, "push notifications: no")
	s.Contains(out, "email notifications: yes")
	s.Zero(s.fake.CallCount("user_settings", remote.OpUpsert), "local changes stay local")

	_, err = s.run("", "settings", "set", "--theme", "neon")
	s.requireNotice(err, apperrors.ErrorTypeValidation)
	_, err = s.run("", "settings", "set")
	s.requireNotice(err, apperrors.ErrorTypeValidation)

	_, err = s.run("", "settings", "set", "--font-size", "large", "--sync")
	s.requireNotice(err, apperrors.ErrorTypeUnauthorized)

	u := s.signIn("ada")
	out, err = s.run("", "settings", "set", "--font-size", "large", "--sync")
	s.Require().NoError(err)
	s.Contains(out, "Settings saved to your account")

	rows := s.fake.Rows("user_settings")
	s.Require().Len(rows, 1)
	s.Equal(u.ID, rows[0]["user_id"])
	s.Equal("large", rows[0]["font_size"])

	_, err = s.run("", "settings", "sync")
	s.Require().NoError(err)
	s.Len(s.fake.Rows("user_settings"), 1)
}

func (s *CLITestSuite) TestIdeas() {
	_, err := s.run("", "ideas", "create", "--title", "x", "--description", "y", "--category", "Productivity")
	s.requireNotice(err, apperrors.ErrorTypeUnauthorized)

	u := s.signIn("ada")
	out, err := s.run("", "ideas", "create",
		"--title", "Habit coach", "--description", "Daily nudges", "--category", "Productivity", "--tags", "habits, ai")
	s.Require().NoError(err)
	s.Contains(out, "Your idea was shared successfully!")

	out, err = s.run("Study buddy\nExplains homework\n\n3\nstudy\n", "ideas", "create")
	s.Require().NoError(err)
	s.Contains(out, "Study buddy")

	rows := s.fake.Rows("ideas")
	s.Require().Len(rows, 2)
	s.Equal(u.ID, rows[1]["user_id"])
	s.Equal("Education", rows[1]["category"])
	s.Equal("Explains homework", rows[1]["description"])

	out, err = s.run("", "ideas", "list")
	s.Require().NoError(err)
	s.Contains(out, "Habit coach")
	s.Contains(out, "ada")

	out, err = s.run("", "ideas", "list", "--category", "Education")
	s.Require().NoError(err)
	s.Contains(out, "Study buddy")
	s.NotContains(out, "Habit coach")

	_, err = s.run("", "ideas", "list", "--category", "Gardening")
	s.requireNotice(err, apperrors.ErrorTypeValidation)

	out, err = s.run("", "-o", "json", "ideas", "mine")
	s.Require().NoError(err)
	s.Contains(out, `"title": "Habit coach"`)

	out, err = s.run("", "ideas", "search", "--quick", "hab")
	s.Require().NoError(err)
	s.Contains(out, "Habit coach")
	s.NotContains(out, "Study buddy")

	id, _ := rows[0]["id"].(string)
	out, err = s.run("", "ideas", "edit", id, "--title", "Habit coach 2")
	s.Require().NoError(err)
	s.Contains(out, "Habit coach 2")
	s.Contains(out, "#habits #ai", "untouched fields are kept")
}

func (s *CLITestSuite) TestShowIdea() {
	s.seedIdea("i1", "Meal planner")

	out, err := s.run("", "ideas", "show", "i1")
	s.Require().NoError(err)
	s.Contains(out, "Meal planner")
	s.Contains(out, "author: grace")
	s.Contains(out, "rating: ☆☆☆☆☆ 0.0 (0)")
	s.Contains(out, "Let an assistant plan it")

	_, err = s.run("", "ideas", "show", "missing")
	s.requireNotice(err, apperrors.ErrorTypeNotFound)
}

func (s *CLITestSuite) TestFavoriteRateComment() {
	s.seedIdea("i1", "Meal planner")

	_, err := s.run("", "favorite", "i1")
	s.requireNotice(err, apperrors.ErrorTypeUnauthorized)

	s.signIn("ada")
	out, err := s.run("", "favorite", "i1")
	s.Require().NoError(err)
	s.Contains(out, "Added to favorites")

	out, err = s.run("", "favorite")
	s.Require().NoError(err)
	s.Contains(out, "Meal planner")

	out, err = s.run("", "favorite", "i1")
	s.Require().NoError(err)
	s.Contains(out, "Removed from favorites")
	s.Empty(s.fake.Rows("favorites"))

	out, err = s.run("", "rate", "i1")
	s.Require().NoError(err)
	s.Contains(out, "You have not rated this idea yet")

	_, err = s.run("", "rate", "i1", "five")
	s.requireNotice(err, apperrors.ErrorTypeValidation)
	_, err = s.run("", "rate", "i1", "9")
	s.requireNotice(err, apperrors.ErrorTypeValidation)

	out, err = s.run("", "rate", "i1", "4")
	s.Require().NoError(err)
	s.Contains(out, "Rated ★★★★☆")

	out, err = s.run("", "ideas", "show", "i1")
	s.Require().NoError(err)
	s.Contains(out, "your rating: ★★★★☆")

	out, err = s.run("", "comments", "add", "i1", "great", "idea")
	s.Require().NoError(err)
	s.Contains(out, "Comment posted")

	out, err = s.run("", "comments", "list", "i1")
	s.Require().NoError(err)
	s.Contains(out, "great idea")
	s.Contains(out, "ada")
}

func (s *CLITestSuite) TestOnboardingComplete() {
	u := s.signIn("ada")

	_, err := s.run("", "onboarding", "complete", "--goals", "productivity")
	s.requireNotice(err, apperrors.ErrorTypeValidation)
	s.Empty(s.fake.Rows("user_preferences"))

	out, err := s.run("", "onboarding", "complete",
		"--goals", "productivity,health", "--categories", "meal-planning", "--wake", "06:30")
	s.Require().NoError(err)
	s.Contains(out, "Setup completed successfully!")
	s.Contains(out, "wake time: 06:30")

	rows := s.fake.Rows("user_preferences")
	s.Require().Len(rows, 1)
	s.Equal(u.ID, rows[0]["user_id"])

	out, err = s.run("", "onboarding", "status")
	s.Require().NoError(err)
	s.Contains(out, "completed: yes")
	s.Contains(out, "goals: productivity, health")
}

func (s *CLITestSuite) TestOnboardingStepWizard() {
	s.signIn("ada")

	answers := strings.Join([]string{
		// schedule: keep the defaults
		"", "", "",
		// goals: go back, then redo the schedule with a bad wake time
		"b",
		"7am", "", "",
		// schedule again, valid this time
		"08:00", "", "2",
		// goals
		"", "1,3",
		// ai preferences
		"", "3", "2",
	}, "\n") + "\n"

	out, err := s.run(answers, "onboarding", "step")
	s.Require().NoError(err)
	s.Contains(out, "Error:")
	s.Contains(out, "Setup completed successfully!")

	rows := s.fake.Rows("user_preferences")
	s.Require().Len(rows, 1)
	s.Equal([]interface{}{"productivity", "learning"}, rows[0]["focus_areas"])
	s.Equal("often", rows[0]["suggestions_frequency"])
	s.Equal([]interface{}{"meal-planning"}, rows[0]["preferred_categories"])
	schedule, ok := rows[0]["daily_routine_preferences"].(map[string]interface{})
	s.Require().True(ok)
	s.Equal("08:00", schedule["wakeTime"])
	s.Equal([]interface{}{"afternoon"}, schedule["productiveHours"])
}

func (s *CLITestSuite) TestDashboardActivityPrompts() {
	u := s.signIn("ada")
	s.fake.Seed("daily_routines", models.DailyRoutine{ID: "r1", UserID: u.ID, Name: "Morning focus"})
	s.fake.Seed("goals", models.Goal{ID: "g1", UserID: u.ID, Title: "Read 10 books", Target: 10, Current: 4})

	out, err := s.run("", "dashboard")
	s.Require().NoError(err)
	s.Contains(out, "Morning focus")
	s.Contains(out, "Read 10 books")
	s.Contains(out, "4/10")
	s.Contains(out, "40%")

	out, err = s.run("", "prompt", "save", "plan", "my", "week")
	s.Require().NoError(err)
	s.Contains(out, "Prompt saved successfully!")

	out, err = s.run("", "prompt", "list")
	s.Require().NoError(err)
	s.Contains(out, "plan my week")

	out, err = s.run("", "activity")
	s.Require().NoError(err)
	s.Contains(out, "ada")
	s.Contains(out, "ideas shared: 0")
}

func (s *CLITestSuite) TestBackendFailureShowsNotice() {
	s.signIn("ada")
	s.fake.FailOn("goals", remote.OpSelect, &remote.Error{Message: "relation goals does not exist", Status: 500})

	_, err := s.run("", "dashboard")
	s.Require().Error(err)
	s.Contains(apperrors.FormatError(err), "Failed to load dashboard data")
	s.NotContains(apperrors.FormatError(err), "relation goals")
}

func (s *CLITestSuite) TestDBSeed() {
	dbPath := filepath.Join(s.dir, "dev.db")
	s.T().Setenv("GOODAIDEAS_DATABASE_URL", "sqlite:"+dbPath)

	out, err := s.run("", "db", "migrate")
	s.Require().NoError(err)
	s.Contains(out, "Database migrated")

	out, err = s.run("", "db", "seed", "--users", "2", "--ideas", "3", "--comments", "4", "--ratings", "2", "--seed", "7")
	s.Require().NoError(err)
	s.Contains(out, "Seeded 2 users and 3 ideas")

	db, err := database.Open(database.Options{URL: "sqlite:" + dbPath})
	s.Require().NoError(err)
	defer database.Close(db)

	var ideas, comments int64
	s.Require().NoError(db.Model(&models.Idea{}).Count(&ideas).Error)
	s.Require().NoError(db.Model(&models.Comment{}).Count(&comments).Error)
	s.EqualValues(3, ideas)
	s.EqualValues(4, comments)

	out, err = s.run("", "db", "stats")
	s.Require().NoError(err)
	s.Regexp(`ideas\s+3`, out)
	s.Regexp(`comments\s+4`, out)

	_, err = s.run("", "db", "seed", "--users", "1", "--ideas", "1", "--comments", "0", "--ratings", "0", "--clean")
	s.Require().NoError(err)
	s.Require().NoError(db.Model(&models.Idea{}).Count(&ideas).Error)
	s.EqualValues(1, ideas)
}

func (s *CLITestSuite) TestCompletionScript() {
	out, err := s.run("", "completion", "bash")
	s.Require().NoError(err)
	s.Contains(out, "goodaideas")

	_, err = s.run("", "completion", "tcsh")
	s.Error(err)
}

func TestCompleteList(t *testing.T) {
	fn := completeList("morning", "afternoon", "evening")

	got, directive := fn(nil, nil, "")
	assert.Equal(t, []string{"morning", "afternoon", "evening"}, got)
	assert.NotZero(t, directive&cobra.ShellCompDirectiveNoSpace)

	got, _ = fn(nil, nil, "morning,eve")
	assert.Equal(t, []string{"morning,afternoon", "morning,evening"}, got)
}
