package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mediakit/catalog/internal/api"
	"github.com/mediakit/catalog/pkg/catalog"
	"github.com/mediakit/catalog/pkg/catalog/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := cfg.OpenPool(context.Background())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	store, err := cfg.BuildBlobStore()
	if err != nil {
		log.Fatalf("Failed to build blob store: %v", err)
	}

	repo, users := cfg.BuildRepository(pool)

	svc, err := catalog.New(
		catalog.WithRepository(repo),
		catalog.WithBlobStore(store),
		catalog.WithPresignTTL(cfg.S3.PresignTTL()),
	)
	if err != nil {
		log.Fatalf("Failed to build catalog service: %v", err)
	}

	auth, err := catalog.NewAuthService(users, slog.Default())
	if err != nil {
		log.Fatalf("Failed to build auth service: %v", err)
	}

	tokenAuth := jwtauth.New(cfg.Auth.Algorithm, []byte(cfg.Auth.Secret), nil)

	router := api.NewRouter(api.RouterDeps{
		Service:   svc,
		Auth:      auth,
		TokenAuth: tokenAuth,
		TokenTTL:  cfg.Auth.TokenTTL(),
		DB:        poolPinger(pool),
		Store:     store,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Media catalog server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exiting")
}

// poolPinger keeps a nil pool from becoming a non-nil api.Pinger interface.
func poolPinger(pool *pgxpool.Pool) api.Pinger {
	if pool == nil {
		return nil
	}
	return pool
}
