// Package main is the entry point for the CoupleMap API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/couplemap/couplemap/internal/config"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/handler"
	"github.com/couplemap/couplemap/internal/invite"
	"github.com/couplemap/couplemap/internal/logging"
	"github.com/couplemap/couplemap/internal/repo"
	"github.com/couplemap/couplemap/internal/service"
	"github.com/couplemap/couplemap/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Geocoding --------------------------------------------------------
	// One gate for the whole process: every search shares the same spacing.
	upstream, err := geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		Language:  cfg.GeocoderLanguage,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to configure geocoder", "error", err)
		os.Exit(1)
	}
	proxy := geocode.NewProxy(upstream, geocode.NewGate(cfg.GeocoderMinInterval), nil)

	// --- Services & router ------------------------------------------------
	couples := repo.NewCoupleRepo(pool)
	folders := repo.NewFolderRepo(pool)
	places := repo.NewPlaceRepo(pool)

	srv := handler.NewServer(handler.Services{
		Couples: service.NewCoupleService(couples, invite.NewGenerator(), logger),
		Folders: service.NewFolderService(folders),
		Places:  service.NewPlaceService(places, folders),
		Tags:    service.NewTagService(places),
		Export:  service.NewExportService(places, folders),
		Geocode: proxy,
	}, logger)

	router := handler.NewRouter(srv, handler.RouterConfig{
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimit:    cfg.APIRateLimit,
	})

	// --- HTTP Server ------------------------------------------------------
	// The write timeout leaves room for a slow geocoder (10s client timeout).
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) { _ = db.Close() }(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", applied)
	return nil
}
