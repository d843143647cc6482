package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/mirror"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"github.com/anonto42/nano-social/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed")

	rdb, err := config.InitRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Firebase is optional: it backs /auth/firebase-login and the FCM mirror.
	var fb *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		fb, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FCMEnabled)
		if err != nil {
			return fmt.Errorf("init firebase: %w", err)
		}
		log.Info("Firebase initialized", zap.Bool("fcm", cfg.FCMEnabled))
	}

	m, closeMirror, err := buildMirror(cfg, db, fb, log)
	if err != nil {
		return err
	}
	defer closeMirror()

	host, err := buildMediaHost(ctx, cfg, log)
	if err != nil {
		return err
	}

	blacklist := auth.NewBlacklist(rdb, log)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, blacklist)
	if rdb == nil {
		go sweepBlacklist(ctx, blacklist)
	}

	repos := repositories.New(db.Postgres)
	deps := services.Deps{
		Repos:    repos,
		Notifier: notify.New(m, log),
		Media:    host,
		Tokens:   tokens,
		Log:      log,
	}
	if fb != nil {
		deps.Identity = fb
	}
	svc := services.New(deps)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Deps{
		Services: svc,
		Users:    repos.Users,
		Tokens:   tokens,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildMirror fans notifications out to every configured collaborator.
func buildMirror(cfg *config.Config, db *config.DB, fb *firebase.App, log *zap.Logger) (mirror.Mirror, func(), error) {
	var (
		fanout  mirror.Fanout
		closers []func()
	)
	if cfg.NATSURL != "" {
		nm, err := mirror.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, nil, err
		}
		fanout = append(fanout, nm)
		closers = append(closers, nm.Close)
		log.Info("notification mirror enabled", zap.String("target", "nats"), zap.String("subject", cfg.NATSSubject))
	}
	if db.Mongo != nil {
		fanout = append(fanout, mirror.NewMongoMirror(db.Mongo.Database(cfg.MongoDatabase)))
		log.Info("notification mirror enabled", zap.String("target", "mongodb"), zap.String("database", cfg.MongoDatabase))
	}
	if fb != nil && fb.MessagingClient != nil {
		fanout = append(fanout, mirror.NewFCMMirror(fb.MessagingClient))
		log.Info("notification mirror enabled", zap.String("target", "fcm"))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(fanout) == 0 {
		return mirror.Noop{}, closeAll, nil
	}
	return fanout, closeAll, nil
}

func buildMediaHost(ctx context.Context, cfg *config.Config, log *zap.Logger) (media.Host, error) {
	if !cfg.MediaEnabled() {
		log.Warn("S3 not configured, image uploads are disabled")
		return media.Disabled{}, nil
	}
	host, err := media.NewS3Host(ctx, media.S3Options{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init media host: %w", err)
	}
	return host, nil
}

func sweepBlacklist(ctx context.Context, b *auth.Blacklist) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Sweep()
		}
	}
}
