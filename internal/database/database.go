package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
)

// Options configures Open
type Options struct {
	// URL is a postgres DSN or URL, or "sqlite:<path>" (":memory:" allowed)
	URL      string
	Debug    bool
	MaxIdle  int
	MaxOpen  int
	Lifetime time.Duration
	Logger   *zap.Logger
}

// Open creates and configures the database connection
func Open(opts Options) (*gorm.DB, error) {
	log := logger.OrNop(opts.Logger)

	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if opts.Debug {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector(opts.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
		return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(orDefault(opts.MaxIdle, 10))
		sqlDB.SetMaxOpenConns(orDefault(opts.MaxOpen, 100))
		if opts.Lifetime == 0 {
			opts.Lifetime = time.Hour
		}
		sqlDB.SetConnMaxLifetime(opts.Lifetime)
	}

	metrics.Get().DatabaseConnectionsOpen.WithLabelValues(db.Dialector.Name()).Set(float64(sqlDB.Stats().OpenConnections))
	log.Info("Database connected", zap.String("dialect", db.Dialector.Name()))
	return db, nil
}

func dialector(url string) gorm.Dialector {
	if path, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(url)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// createIndexes creates indexes gorm tags cannot express
func createIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_ideas_created ON ideas (created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ideas_user_created ON ideas (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comments_idea_created ON comments (idea_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_user_activity_user_date ON user_activity (user_id, date)",
	}

	if db.Dialector.Name() == "postgres" {
		statements = append(statements,
			"CREATE INDEX IF NOT EXISTS idx_ideas_title_search ON ideas USING gin(to_tsvector('english', title))",
			"CREATE INDEX IF NOT EXISTS idx_ideas_tags ON ideas USING GIN (tags)",
			"CREATE INDEX IF NOT EXISTS idx_auth_users_email_lower ON auth_users (LOWER(email))",
		)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// TableCount is the number of rows in one table
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Counts returns the row count of every migrated table, in migration order
func Counts(db *gorm.DB) ([]TableCount, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	out := make([]TableCount, 0, len(models.All()))
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("resolve table for %T: %w", m, err)
		}
		var n int64
		if err := db.Table(stmt.Schema.Table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		out = append(out, TableCount{Table: stmt.Schema.Table, Rows: n})
	}
	return out, nil
}
