package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/LJTian/BlogHub/internal/classifier"
	"github.com/LJTian/BlogHub/internal/collector"
	"github.com/LJTian/BlogHub/internal/config"
	"github.com/LJTian/BlogHub/internal/ingest"
	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/processor"
	"github.com/LJTian/BlogHub/internal/storage"
)

type syncedPost struct {
	processor.Post
	Metadata classifier.Metadata `json:"metadata"`
}

// 一个仅执行一次 feed 同步的命令行入口：打印同步结果（含派生元数据）后退出
func main() {
	config.LoadEnv()
	cfg := config.Load()

	feedURL := flag.String("feed", cfg.FeedURL, "RSS feed URL")
	limit := flag.Int("limit", cfg.FeedItemLimit, "number of feed items to keep")
	fullContent := flag.Bool("full-content", cfg.FetchFullContent, "fetch article pages for short feed bodies")
	flag.Parse()

	// 日志写到 stderr，stdout 只输出 JSON
	logger := logging.NewLogger(cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	journal, err := storage.NewJournal(cfg.PostgresDSN)
	if err != nil {
		logger.WithError(err).Fatal("init ingest journal failed")
	}

	coord := ingest.NewCoordinator(
		collector.NewFeedSource(*feedURL, cfg.FeedMaxRetries, logger),
		storage.NewStore(),
		logger,
		ingest.Options{
			ItemLimit:        *limit,
			FeedTimeout:      cfg.FeedTimeout,
			FetchFullContent: *fullContent,
		},
	)
	coord.Pages = collector.NewPageSource(cfg.FeedTimeout)
	coord.Journal = journal

	posts := coord.SyncFromFeed(context.Background())
	out := make([]syncedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, syncedPost{Post: p, Metadata: classifier.Describe(p)})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.WithError(err).Fatal("encode posts failed")
	}
}
