package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/flipdev/customer-cleanup/internal/api"
	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/notify"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
	"github.com/flipdev/customer-cleanup/internal/repository/postgres"
	"github.com/flipdev/customer-cleanup/internal/service/auditlog"
	"github.com/flipdev/customer-cleanup/internal/service/cleanup"
	"github.com/flipdev/customer-cleanup/internal/service/eligibility"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// cfgSource adapts the loaded config to the services' snapshot contract.
type cfgSource struct{ cfg *config.Config }

func (s cfgSource) Cleanup() config.CleanupSnapshot { return s.cfg.Cleanup.Snapshot() }

// auditSink adapts the audit store to the executor's fire-and-forget
// append contract.
type auditSink struct{ store *auditlog.Store }

func (a auditSink) Append(ctx context.Context, entry *domain.CleanupLogEntry) error {
	_, err := a.store.Append(ctx, entry)
	return err
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxIdleSecs > 0 {
		db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleSecs) * time.Second)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	customerRepo := postgres.NewCustomerRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	logRepo := postgres.NewCleanupLogRepo(db)

	source := cfgSource{cfg}
	auditStore := auditlog.NewStore(logRepo)
	scanner := eligibility.NewService(customerRepo, orderRepo, source)

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, scan cache disabled", "error", err)
		} else {
			scanner.SetCache(eligibility.NewScanCache(client, cfg.Redis.ScanTTL()))
		}
	}

	mailer := buildMailer(cfg)
	executor := cleanup.NewService(customerRepo, orderRepo, auditSink{auditStore}, mailer, source)
	executor.SetScanInvalidator(scanner)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	executor.SetMetrics(cleanup.NewMetrics(registry))

	handlers := api.NewHandlers(scanner, executor, auditStore, source)
	router := api.SetupRoutes(handlers, registry)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", addr,
			"cleanup_enabled", cfg.Cleanup.Enabled,
			"dry_run", cfg.Cleanup.DryRun)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildMailer picks SES when it is enabled, the log transport otherwise.
func buildMailer(cfg *config.Config) cleanup.Mailer {
	templates := notify.NewTemplateEngine()
	opts := notify.Options{
		SenderEmail: cfg.Cleanup.SenderEmail,
		SenderName:  cfg.Cleanup.SenderName,
		TemplateID:  cfg.Cleanup.EmailTemplate,
		StoreName:   cfg.Cleanup.StoreName,
		StoreURL:    cfg.Cleanup.StoreURL,
	}

	if cfg.SES.Enabled {
		mailer, err := notify.NewSESMailer(cfg.SES, templates, opts)
		if err != nil {
			logger.Warn("ses mailer unavailable, falling back to log transport", "error", err)
		} else {
			return mailer
		}
	}
	return notify.NewLogMailer(templates, opts)
}
