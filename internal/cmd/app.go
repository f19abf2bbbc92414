package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/0xAcousticbridge/GAID/internal/cache"
	"github.com/0xAcousticbridge/GAID/internal/database"
	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	"github.com/0xAcousticbridge/GAID/pkg/config"
	"github.com/0xAcousticbridge/GAID/pkg/credentials"
	"github.com/0xAcousticbridge/GAID/pkg/persist"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
	"github.com/0xAcousticbridge/GAID/pkg/remote/rest"
	"github.com/0xAcousticbridge/GAID/pkg/remote/sqlstore"
	"github.com/0xAcousticbridge/GAID/pkg/service"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// app is everything a command needs, bound to the stored session
type app struct {
	log    *zap.Logger
	client remote.Client
	store  *store.Store
	svc    *service.Services
	redis  *cache.RedisClient

	closers []func() error
}

// openApp builds the app from configuration. Tests replace it.
var openApp = newApp

func newApp(ctx context.Context) (*app, error) {
	a := &app{log: logger.Log}

	shutdown, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:    "goodaideas",
		ServiceVersion: Version,
		Environment:    config.GetString("telemetry.environment"),
		OTLPEndpoint:   config.GetString("telemetry.otlp_endpoint"),
		Enabled:        config.GetBool("telemetry.enabled"),
		SamplingRate:   config.GetFloat("telemetry.sampling_rate"),
	})
	if err != nil {
		a.log.Warn("Tracing disabled", zap.Error(err))
	}
	a.closers = append(a.closers, shutdown)

	sessions := credentials.Default()
	client, err := a.openClient(sessions)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	storage, err := a.openStorage()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store = store.New(client,
		store.WithLogger(a.log),
		store.WithPersister(persist.New(storage, config.GetString("storage.driver"), a.log)),
	)
	release, err := a.store.BindSession(ctx)
	if err != nil {
		a.log.Warn("Stored session is unusable, signing out locally", zap.Error(err))
		if err := sessions.Delete(); err != nil {
			a.Close()
			return nil, err
		}
		if release, err = a.store.BindSession(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	a.closers = append(a.closers, func() error { release(); return nil })

	a.svc = service.New(client, a.store, a.log)
	return a, nil
}

func (a *app) openClient(sessions remote.SessionStore) (remote.Client, error) {
	switch driver := config.GetString("backend.driver"); driver {
	case "rest", "":
		return rest.New(rest.Options{
			URL:      config.GetString("backend.url"),
			AnonKey:  config.GetString("backend.anon_key"),
			Timeout:  config.BackendTimeout(),
			Sessions: sessions,
			Logger:   a.log,
		}), nil
	case "postgres", "sqlite", "sql":
		db, err := a.openDatabase()
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db, sqlstore.Options{
			JWTSecret: config.GetString("auth.jwt_secret"),
			TokenTTL:  config.GetDuration("auth.token_ttl"),
			Sessions:  sessions,
			Logger:    a.log,
		})
	default:
		return nil, fmt.Errorf("unknown backend.driver %q (want rest, postgres or sqlite)", driver)
	}
}

// openDatabase connects to database.url and closes it with the app
func (a *app) openDatabase() (*gorm.DB, error) {
	db, err := database.Open(database.Options{
		URL:    config.GetString("database.url"),
		Debug:  config.GetString("log.level") == "debug",
		Logger: a.log,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	return db, nil
}

func (a *app) openRedis() (*cache.RedisClient, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	rc, err := cache.NewRedisClient(
		config.GetString("redis.host"),
		config.GetString("redis.port"),
		config.GetString("redis.password"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redis = rc
	a.closers = append(a.closers, rc.Close)
	return rc, nil
}

func (a *app) openStorage() (persist.Storage, error) {
	switch driver := config.GetString("storage.driver"); driver {
	case "file", "":
		return persist.NewFileStorage(config.GetString("storage.dir"))
	case "redis":
		rc, err := a.openRedis()
		if err != nil {
			return nil, err
		}
		return persist.NewRedisStorage(rc, "goodaideas:"), nil
	case "memory":
		return persist.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage.driver %q (want file, redis or memory)", driver)
	}
}

// Close releases everything in reverse order of opening
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Cleanup failed", zap.Error(err))
		}
	}
	a.closers = nil
}
