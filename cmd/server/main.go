package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/postboard/internal/config"
	"github.com/iliyamo/postboard/internal/database"
	"github.com/iliyamo/postboard/internal/handler"
	"github.com/iliyamo/postboard/internal/logging"
	"github.com/iliyamo/postboard/internal/middleware"
	"github.com/iliyamo/postboard/internal/queue"
	"github.com/iliyamo/postboard/internal/repository"
	"github.com/iliyamo/postboard/internal/router"
	"github.com/iliyamo/postboard/internal/service"
)

// Usage:
//
//	server                    run the HTTP API
//	server migrate [up|down|status]
func main() {
	cfg := config.Load()
	logger := logging.Setup("postboard", cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		command := "up"
		if len(os.Args) > 2 {
			command = os.Args[2]
		}
		if err := database.Migrate(context.Background(), db.DB, command); err != nil {
			logger.Error("migration failed", "command", command, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the response cache and the rate limiter; both degrade to
	// pass-through without it.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(); err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", "error", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	var events handler.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewQueuePublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLog); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("activity consumer stopped", "error", err)
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORS())

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)

	// Limiter, purger and cache run per group, after routing and after the
	// admin guard. Admin writes purge too since author names appear in post
	// responses.
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	purger := middleware.NewCachePurger(cacheCfg, rdb)

	router.RegisterRoutes(e)
	router.RegisterAdmin(e, handler.NewAdminHandler(users, events, cfg.RequestTimeout), cfg.AdminJWTSecret,
		limiter, purger)
	router.RegisterPosts(e, handler.NewPostHandler(posts, comments, events, cfg.RequestTimeout),
		limiter, purger, middleware.NewRedisCache(cacheCfg, rdb))

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
