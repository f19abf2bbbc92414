package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/handlers"
	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/middleware"
	"github.com/0xAcousticbridge/GAID/pkg/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the client state and app features over HTTP",
	Long: `Serve the client state store and the app features as a JSON API for UI
consumers. The server acts as the account signed in with 'goodaideas auth login'
or through POST /api/v1/auth/login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := config.GetString("log.level")
		if verbose {
			level = "debug"
		}
		log := logger.Initialize(level, config.GetString("log.file"))
		if serveAddr == "" {
			serveAddr = config.GetString("server.addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(cmd, func(a *app) error {
			r, err := newRouter(ctx, a)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              serveAddr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("GoodAIdeas API listening", zap.String("addr", serveAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info("Shutting down server...")

			// Give outstanding requests 30 seconds to complete
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info("Server exited")
			return nil
		})
	},
}

// newRouter builds the engine with the middleware stack and every route.
// Rate limits are shared through redis when storage.driver is redis.
func newRouter(ctx context.Context, a *app) (*gin.Engine, error) {
	if !verbose && config.GetString("log.level") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.TracingMiddleware("goodaideas"))
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.GetStringSlice("server.allowed_origins")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	limiter := func(cfg middleware.RateLimitConfig) gin.HandlerFunc {
		return middleware.NewRateLimiter(ctx, cfg)
	}
	if config.GetString("storage.driver") == "redis" {
		rc, err := a.openRedis()
		if err != nil {
			return nil, err
		}
		limiter = func(cfg middleware.RateLimitConfig) gin.HandlerFunc {
			return middleware.NewRedisRateLimiter(ctx, rc, cfg)
		}
	}
	r.Use(limiter(middleware.DefaultRateLimitConfig()))

	h := handlers.NewHandlers(a.svc, a.store, Version)
	handlers.SetupRoutes(r, h, handlers.Limits{
		Auth:   limiter(middleware.AuthRateLimitConfig()),
		Write:  limiter(middleware.WriteRateLimitConfig()),
		Search: limiter(middleware.SearchRateLimitConfig()),
	})
	return r, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}
