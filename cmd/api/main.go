package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/BlogHub/internal/api"
	"github.com/LJTian/BlogHub/internal/collector"
	"github.com/LJTian/BlogHub/internal/config"
	"github.com/LJTian/BlogHub/internal/ingest"
	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/metrics"
	"github.com/LJTian/BlogHub/internal/scheduler"
	"github.com/LJTian/BlogHub/internal/storage"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)
	cfg.Log(logger)

	store := storage.NewStore()
	m := metrics.New("bloghub")

	journal, err := storage.NewJournal(cfg.PostgresDSN)
	if err != nil {
		logger.WithError(err).Fatal("init ingest journal failed")
	}
	cache := storage.NewListCache(cfg.RedisAddr, logger)

	coord := ingest.NewCoordinator(
		collector.NewFeedSource(cfg.FeedURL, cfg.FeedMaxRetries, logger),
		store,
		logger,
		ingest.Options{
			ItemLimit:        cfg.FeedItemLimit,
			FeedTimeout:      cfg.FeedTimeout,
			FetchFullContent: cfg.FetchFullContent,
			KeepOnFailure:    cfg.KeepOnFeedFailure,
		},
	)
	coord.Pages = collector.NewPageSource(cfg.FeedTimeout)
	coord.Journal = journal
	coord.Metrics = m

	// 定时同步是可选的；未配置时由 GET /api/rss 触发
	var sched *scheduler.Scheduler
	if cfg.SyncCronSpec != "" {
		sched, err = scheduler.New(cfg.SyncCronSpec, coord, logger)
		if err != nil {
			logger.WithError(err).Fatal("init scheduler failed")
		}
		sched.StartupDelay = 5 * time.Second
		sched.Start()
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(store, coord, logger,
		api.WithCache(cache),
		api.WithJournal(journal),
		api.WithMetrics(m),
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting api server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server exit")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}
