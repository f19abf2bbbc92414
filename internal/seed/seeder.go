package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

// DevPassword is the password of every seeded account
const DevPassword = "password123"

// Sizes controls how much data SeedDev creates
type Sizes struct {
	Users    int
	Ideas    int
	Comments int
	Ratings  int
}

// DefaultSizes is enough data to make lists, search and the profile page interesting
func DefaultSizes() Sizes {
	return Sizes{Users: 25, Ideas: 150, Comments: 400, Ratings: 600}
}

// Seeder fills a database with fake but plausible data
type Seeder struct {
	db   *gorm.DB
	log  *zap.Logger
	rng  *rand.Rand
	now  time.Time
	cost int
}

// NewSeeder creates a seeder. A zero seed picks a random one.
func NewSeeder(db *gorm.DB, seed int64, log *zap.Logger) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	_ = gofakeit.Seed(seed)
	return &Seeder{
		db:   db,
		log:  logger.OrNop(log),
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now().UTC(),
		cost: bcrypt.DefaultCost,
	}
}

// SeedDev creates users with profiles and preferences, ideas, comments, ratings,
// favorites, routines, goals and a month of activity
func (s *Seeder) SeedDev(sizes Sizes) error {
	s.log.Info("Creating users...")
	users, err := s.seedUsers(sizes.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	s.log.Info("Creating ideas...")
	ideas, err := s.seedIdeas(users, sizes.Ideas)
	if err != nil {
		return fmt.Errorf("failed to seed ideas: %w", err)
	}

	s.log.Info("Creating comments...")
	if err := s.seedComments(users, ideas, sizes.Comments); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	s.log.Info("Creating ratings and favorites...")
	if err := s.seedRatings(users, ideas, sizes.Ratings); err != nil {
		return fmt.Errorf("failed to seed ratings: %w", err)
	}

	s.log.Info("Creating dashboards...")
	if err := s.seedDashboards(users); err != nil {
		return fmt.Errorf("failed to seed dashboards: %w", err)
	}

	s.log.Info("Creating activity...")
	if err := s.seedActivity(users); err != nil {
		return fmt.Errorf("failed to seed activity: %w", err)
	}
	return nil
}

// Clean deletes every row, children first
func (s *Seeder) Clean() error {
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: s.db}
		if err := stmt.Parse(all[i]); err != nil {
			return err
		}
		if err := s.db.Exec("DELETE FROM " + stmt.Schema.Table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", stmt.Schema.Table, err)
		}
	}
	return nil
}

func (s *Seeder) recent(days int) time.Time {
	return gofakeit.DateRange(s.now.AddDate(0, 0, -days), s.now).UTC()
}

// pick returns between min and max distinct options
func (s *Seeder) pick(options []string, min, max int) []string {
	n := min
	if max > min {
		n += s.rng.Intn(max - min + 1)
	}
	chosen := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(options)) {
		if len(chosen) == n {
			break
		}
		chosen = append(chosen, options[i])
	}
	return chosen
}

func (s *Seeder) seedUsers(count int) ([]models.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	taken := make(map[string]bool)
	var existing []models.AuthUser
	if err := s.db.Select("email").Find(&existing).Error; err != nil {
		return nil, err
	}
	for _, u := range existing {
		taken[u.Email] = true
	}

	profiles := make([]models.Profile, 0, count)
	for len(profiles) < count {
		username := strings.ToLower(gofakeit.Username())
		email := username + "@example.com"
		if taken[email] {
			continue
		}
		taken[email] = true

		created := s.recent(90)
		account := models.AuthUser{Email: email, PasswordHash: string(hash), CreatedAt: created}
		profile := models.Profile{
			Username:            username,
			AvatarURL:           fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			OnboardingCompleted: s.rng.Float32() < 0.8,
			CreatedAt:           created,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			profile.ID = account.ID
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			if !profile.OnboardingCompleted {
				return nil
			}
			return tx.Create(s.preferencesFor(profile.ID)).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", email, err)
		}
		profiles = append(profiles, profile)
	}

	s.log.Info("Created users", zap.Int("count", len(profiles)))
	return profiles, nil
}

func (s *Seeder) preferencesFor(userID string) *models.UserPreferences {
	wake := 5 + s.rng.Intn(4)
	sleep := 21 + s.rng.Intn(3)
	return &models.UserPreferences{
		UserID: userID,
		DailyRoutinePreferences: datatypes.NewJSONType(models.DailySchedule{
			WakeTime:        fmt.Sprintf("%02d:00", wake),
			SleepTime:       fmt.Sprintf("%02d:30", sleep),
			ProductiveHours: s.pick(service.ProductivePeriods, 1, 2),
		}),
		SuggestionsFrequency: gofakeit.RandomString(service.SuggestionFrequencies),
		FocusAreas:           s.pick(service.GoalOptions, 1, 3),
		PreferredCategories:  s.pick(service.AssistCategories, 1, 3),
	}
}

var ideaTags = []string{"ai", "automation", "habits", "family", "work", "health", "money", "study", "food", "home"}

var ideaNouns = []string{"planner", "coach", "tracker", "assistant", "tutor", "finder", "buddy", "organizer", "advisor", "journal"}

func (s *Seeder) seedIdeas(users []models.Profile, count int) ([]models.Idea, error) {
	ideas := make([]models.Idea, 0, count)
	for i := 0; i < count; i++ {
		word := gofakeit.Word()
		if word == "" {
			word = "smart"
		}
		title := strings.ToUpper(word[:1]) + word[1:] + " " + gofakeit.RandomString(ideaNouns)
		created := s.recent(60)

		tags := s.pick(ideaTags, 0, 3)

		idea := models.Idea{
			UserID:      users[s.rng.Intn(len(users))].ID,
			Title:       title,
			Description: gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
			Category:    gofakeit.RandomString(service.Categories),
			Tags:        tags,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if err := s.db.Create(&idea).Error; err != nil {
			return nil, fmt.Errorf("failed to create idea: %w", err)
		}
		ideas = append(ideas, idea)
	}

	s.log.Info("Created ideas", zap.Int("count", len(ideas)))
	return ideas, nil
}

var commentTemplates = []string{
	"Love this, trying it tonight",
	"Would pair well with a weekly review",
	"Great idea!",
	"Has anyone built this already?",
	"Saved for later",
	"This could save me hours",
}

func (s *Seeder) seedComments(users []models.Profile, ideas []models.Idea, count int) error {
	if len(ideas) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		idea := ideas[s.rng.Intn(len(ideas))]
		content := gofakeit.HipsterSentence()
		if s.rng.Float32() < 0.5 {
			content = gofakeit.RandomString(commentTemplates)
		}
		created := gofakeit.DateRange(idea.CreatedAt, s.now).UTC()
		comment := models.Comment{
			IdeaID:    idea.ID,
			UserID:    users[s.rng.Intn(len(users))].ID,
			Content:   content,
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}
	s.log.Info("Created comments", zap.Int("count", count))
	return nil
}

// seedRatings rates random ideas; a quarter of the rated ideas are also favorited.
// Repeat pairs are skipped by the unique indexes.
func (s *Seeder) seedRatings(users []models.Profile, ideas []models.Idea, count int) error {
	if len(ideas) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		userID := users[s.rng.Intn(len(users))].ID
		ideaID := ideas[s.rng.Intn(len(ideas))].ID

		rating := models.IdeaRating{UserID: userID, IdeaID: ideaID, Rating: 1 + s.rng.Intn(5)}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}
		if s.rng.Float32() < 0.25 {
			fav := models.Favorite{UserID: userID, IdeaID: ideaID, CreatedAt: s.recent(30)}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
				return fmt.Errorf("failed to create favorite: %w", err)
			}
		}
	}
	return nil
}

var routineNames = []string{"Morning focus", "Deep work", "Evening wind-down", "Workout", "Weekly planning"}

func (s *Seeder) seedDashboards(users []models.Profile) error {
	for _, u := range users {
		for _, name := range s.pick(routineNames, 1, 3) {
			routine := models.DailyRoutine{UserID: u.ID, Name: name, IsOptimized: s.rng.Float32() < 0.3, CreatedAt: s.recent(60)}
			if err := s.db.Create(&routine).Error; err != nil {
				return err
			}
		}
		for i := 0; i < 1+s.rng.Intn(3); i++ {
			target := 5 + s.rng.Intn(20)
			deadline := s.now.AddDate(0, 1+s.rng.Intn(3), 0)
			goal := models.Goal{
				UserID:   u.ID,
				Title:    gofakeit.HipsterSentence(),
				Target:   target,
				Current:  s.rng.Intn(target + 1),
				Deadline: &deadline,
				Category: gofakeit.RandomString(service.GoalOptions),
			}
			if err := s.db.Create(&goal).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedActivity(users []models.Profile) error {
	for _, u := range users {
		rows := make([]models.UserActivity, 0, service.ActivityDays)
		for d := service.ActivityDays - 1; d >= 0; d-- {
			if s.rng.Float32() < 0.4 {
				continue
			}
			rows = append(rows, models.UserActivity{
				UserID: u.ID,
				Date:   s.now.AddDate(0, 0, -d).Format("2006-01-02"),
				Count:  1 + s.rng.Intn(8),
			})
		}
		if len(rows) == 0 {
			continue
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}
