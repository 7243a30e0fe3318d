package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"pethouse/internal/adapters/storage/photos"
	"pethouse/internal/adapters/storage/postgres"
	"pethouse/internal/platform/config"
	"pethouse/internal/platform/logger"
	"pethouse/internal/router"
	"pethouse/internal/session"
)

// @title pethouse API
// @version 1.0
// @description Pet owners keep their pets and veterinary visits. Session cookie authentication.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Error("config load failed", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	photoStore, err := photos.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	h, err := router.NewRouter(router.Options{
		Logger: log,
		DB:     db,
		Photos: photoStore,
		Session: session.Options{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		BcryptCost:    cfg.Auth.BcryptCost,
		MaxPhotoBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           h,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"env":     cfg.App.Env,
			"storage": storageName(db),
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDB returns nil when no DSN is configured; the router then keeps everything in memory.
func openDB(ctx context.Context, cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	if cfg.DB.DSN == "" {
		log.Warn("DB_DSN not set, data lives in memory and is lost on restart", nil)
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	n, err := postgres.NewSessionsRepo(db).DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Warn("expired session cleanup failed", map[string]any{"err": err})
	} else if n > 0 {
		log.Info("expired sessions removed", map[string]any{"count": n})
	}

	return db, nil
}

func storageName(db *sqlx.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
