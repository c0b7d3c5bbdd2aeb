package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"campus-complaints/internal/config"
	"campus-complaints/internal/database"
	"campus-complaints/internal/logger"
	"campus-complaints/internal/router"
	"campus-complaints/internal/service"
	"campus-complaints/internal/session"
	"campus-complaints/internal/util"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	// used until the configured logger exists
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// .env feeds the CC_* environment overrides
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn().Err(err).Msg("load .env")
	}

	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		boot.Fatal().Err(err).Msg("create log dir")
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		lg.Fatal().Err(err).Msg("init database")
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migrate database")
	}

	ctx := context.Background()
	sessions, err := newSessions(ctx, cfg.Session, db, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("init sessions")
	}
	if n, err := session.PurgeExpired(ctx, db, time.Now()); err != nil {
		lg.Warn().Err(err).Msg("purge sessions")
	} else if n > 0 {
		lg.Info().Int64("count", n).Msg("purged stale sessions")
	}

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		created, err := service.NewUserService(db).EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			lg.Fatal().Err(err).Msg("seed admin")
		}
		if created {
			lg.Info().Str("username", cfg.Admin.Username).Msg("admin account created")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// setup router
	r, err := router.SetupRouter(router.Deps{
		Config:   cfg,
		DB:       db,
		Log:      lg,
		Sessions: sessions,
		Registry: reg,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("setup router")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("shutdown")
	}
}

// newSessions picks the session store: the sessions table by default, redis
// when session.driver=redis.
func newSessions(ctx context.Context, cfg config.SessionConfig, db *gorm.DB, lg zerolog.Logger) (*session.Manager, error) {
	secret := cfg.Secret
	if secret == "" {
		var err error
		if secret, err = util.RandomString(48); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		lg.Warn().Msg("session.secret not set; using a random secret, sessions end on restart")
	}
	ttl := time.Duration(cfg.ExpireHours) * time.Hour

	var store session.Store
	switch cfg.Driver {
	case "", "database":
		store = session.NewGormStore(db)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = session.NewRedisStore(rdb)
	default:
		return nil, fmt.Errorf("unsupported session driver %q", cfg.Driver)
	}
	return session.NewManager(store, secret, cfg.CookieName, ttl, cfg.SecureCookie), nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
