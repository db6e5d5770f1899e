package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/mailer"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/store"
	"github.com/ignite/newsletter/internal/subscription"
)

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func newMailer(ctx context.Context, cfg *config.Config) (mailer.Mailer, error) {
	switch cfg.Mailer.Provider {
	case "ses":
		return mailer.NewSES(ctx, cfg.SES, cfg.Mailer)
	case "sparkpost":
		return mailer.NewSparkPost(cfg.SparkPost, cfg.Mailer), nil
	default:
		return nil, fmt.Errorf("unsupported mailer provider %q", cfg.Mailer.Provider)
	}
}

func main() {
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL (or database.url in config.yaml) is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime())

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to reach database at %s: %v", extractHost(cfg.Database.URL), err)
	}
	log.Printf("Connected to database at %s", extractHost(cfg.Database.URL))

	m, err := newMailer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	log.Printf("Email transport: %s", cfg.Mailer.Provider)

	svc := subscription.New(store.New(db), m, cfg.Server.BaseURL)
	server := api.NewServer(cfg.Server, svc, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	log.Printf("Starting newsletter server on %s (confirmation links use %s)", addr, cfg.Server.BaseURL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
