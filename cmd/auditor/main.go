package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/api"
	"github.com/nmang004/rival-outranker-sub013/internal/audit"
	"github.com/nmang004/rival-outranker-sub013/internal/config"
	"github.com/nmang004/rival-outranker-sub013/internal/crawler"
	"github.com/nmang004/rival-outranker-sub013/internal/jobs"
	"github.com/nmang004/rival-outranker-sub013/internal/monitoring"
	"github.com/nmang004/rival-outranker-sub013/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Storage is optional: the service audits without it, it just loses
	// history and the latest-audit index.
	var pgStore *storage.PostgresStore
	if cfg.PostgresURL != "" {
		pgStore, err = storage.NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
	}
	var redisStore *storage.RedisStore
	if cfg.RedisAddr != "" {
		redisStore = storage.NewRedisStore(cfg.RedisAddr, time.Duration(cfg.JobTTL)*time.Second)
		defer redisStore.Close()
	}

	metrics := monitoring.NewMetrics()

	// Crawler: plain HTTP fetching, with a headless-browser fetcher
	// available for deep crawls of JS-rendered sites.
	pageTimeout := time.Duration(cfg.CrawlTimeout) * time.Second
	var deepFetcher crawler.Fetcher
	if cfg.EnableDeepCrawl {
		deepFetcher = crawler.NewBrowserFetcher(pageTimeout)
	}
	siteCrawler := crawler.NewSiteCrawler(
		crawler.NewHTTPFetcher(pageTimeout),
		deepFetcher,
		crawler.Config{
			Workers:    cfg.CrawlWorkers,
			MaxPages:   cfg.CrawlMaxPages,
			MaxRetries: cfg.CrawlMaxRetries,
		},
		logger,
	)

	// Audit engine
	engine := audit.NewEngine(
		audit.NewClassifier(logger),
		audit.NewRuleSet(logger),
		audit.NewPriorityAssigner(cfg.TemplateThreshold, 0, logger),
		cfg.CrawlWorkers,
		logger,
	)

	// Job manager. Interface arguments must stay nil when the concrete
	// store is nil, hence the indirection.
	var archive jobs.Archive
	if pgStore != nil {
		archive = pgStore
	}
	var index jobs.Index
	if redisStore != nil {
		index = redisStore
	}
	manager := jobs.NewManager(
		jobs.Config{
			AuditTimeout: time.Duration(cfg.AuditTimeout) * time.Second,
			JobTTL:       time.Duration(cfg.JobTTL) * time.Second,
		},
		siteCrawler, engine, archive, index, metrics, logger,
	)

	// Initialize API Server
	server := api.NewServer(cfg, manager, pgStore, redisStore, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
