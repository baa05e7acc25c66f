// Package ingest 编排两条写入路径：feed 同步（整体替换 Store）与 webhook 推送（按 link 幂等追加）。
package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/LJTian/BlogHub/internal/collector"
	"github.com/LJTian/BlogHub/internal/extractor"
	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/metrics"
	"github.com/LJTian/BlogHub/internal/processor"
	"github.com/LJTian/BlogHub/internal/storage"
)

const (
	// DefaultItemLimit 只取 feed 的前 N 条，不重新排序（默认认为 feed 已是新 → 旧）
	DefaultItemLimit = 3
	// DefaultFeedTimeout 整个抓取与解析的超时，超时等同抓取失败
	DefaultFeedTimeout = 15 * time.Second

	pageConcurrency = 3
)

// Options 同步策略
type Options struct {
	ItemLimit   int
	FeedTimeout time.Duration
	// FetchFullContent 正文过短时抓取文章页并用 extractor 提取正文
	FetchFullContent bool
	// KeepOnFailure 同步失败且 Store 非空时保留原有数据，而不是换成兜底文章
	KeepOnFailure bool
}

// Coordinator 是 Store 唯一的写入方
type Coordinator struct {
	Feed       collector.FeedFetcher
	Pages      collector.PageFetcher
	Store      *storage.Store
	Normalizer *processor.Normalizer
	Extractor  *extractor.Extractor
	Journal    *storage.Journal
	Metrics    *metrics.Collector
	Logger     logging.Logger
	Options    Options

	// feed 同步同一时间只跑一次，并发调用共享结果
	group singleflight.Group
}

func NewCoordinator(feed collector.FeedFetcher, store *storage.Store, logger logging.Logger, opts Options) *Coordinator {
	if opts.ItemLimit <= 0 {
		opts.ItemLimit = DefaultItemLimit
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = DefaultFeedTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{
		Feed:       feed,
		Store:      store,
		Normalizer: processor.NewNormalizer(),
		Extractor:  extractor.New(),
		Logger:     logger,
		Options:    opts,
	}
}

// SyncFromFeed 拉取 feed 并整体替换 Store；不返回错误，失败时降级为兜底文章
// （或在 KeepOnFailure 时保留上一份快照），返回同步后的 Store 内容
func (c *Coordinator) SyncFromFeed(ctx context.Context) []processor.Post {
	v, _, _ := c.group.Do("feed", func() (interface{}, error) {
		return c.syncOnce(ctx), nil
	})
	return v.([]processor.Post)
}

func (c *Coordinator) syncOnce(ctx context.Context) []processor.Post {
	posts, err := c.loadFeed(ctx)
	if err == nil {
		c.Store.ReplaceAll(posts)
		c.Logger.WithField("count", len(posts)).Info("store replaced from feed")
		c.record(ctx, &storage.IngestEvent{Kind: storage.KindFeedSync, Result: storage.ResultOK, Count: len(posts)})
		c.Metrics.FeedSync(storage.ResultOK, c.Store.Count())
		return c.Store.GetAll()
	}

	result := storage.ResultFallback
	if c.Options.KeepOnFailure && c.Store.Count() > 0 {
		result = storage.ResultKept
		c.Logger.WithError(err).Warn("feed sync failed, keeping previous posts")
	} else {
		c.Store.ReplaceAll([]processor.Post{FallbackPost(time.Now())})
		c.Logger.WithError(err).Warn("feed sync failed, fallback post installed")
	}
	c.record(ctx, &storage.IngestEvent{
		Kind:   storage.KindFeedSync,
		Result: result,
		Count:  c.Store.Count(),
		Error:  err.Error(),
	})
	c.Metrics.FeedSync(result, c.Store.Count())
	return c.Store.GetAll()
}

// loadFeed 抓取 → 解析 → （可选）补全正文 → 规范化；任一步失败都不会修改 Store
func (c *Coordinator) loadFeed(ctx context.Context) ([]processor.Post, error) {
	if c.Feed == nil {
		return nil, &FetchError{Source: "feed", Err: errors.New("no feed source configured")}
	}

	// 同步结果由所有读者共享，调用方断开不应让 Store 换成兜底文章；只有超时算抓取失败
	base := context.WithoutCancel(ctx)
	fetchCtx, cancel := context.WithTimeout(base, c.Options.FeedTimeout)
	defer cancel()

	items, err := c.Feed.FetchFeed(fetchCtx)
	if err != nil {
		if errors.Is(err, collector.ErrFeedParse) {
			return nil, &ParseError{Source: c.Feed.Name(), Err: err}
		}
		return nil, &FetchError{Source: c.Feed.Name(), Err: err}
	}
	c.Logger.WithField("count", len(items)).Info("feed fetched")

	if len(items) > c.Options.ItemLimit {
		items = items[:c.Options.ItemLimit]
	}
	if c.Options.FetchFullContent && c.Pages != nil {
		c.enrich(base, items)
	}

	posts := c.Normalizer.ProcessFeed(items, c.Options.ItemLimit)
	for _, p := range posts {
		c.Logger.WithField("id", p.ID).WithField("link", p.Link).Debug("post normalized")
	}
	return posts, nil
}

// enrich 正文短于 MinFullContent 的条目并发抓取原文页；抓取或提取失败时保留 feed 字段。
// 每个 goroutine 只写自己下标的条目，无需加锁
func (c *Coordinator) enrich(ctx context.Context, items []collector.FeedItem) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, pageConcurrency)
	)
	for i := range items {
		it := &items[i]
		body := it.Content
		if strings.TrimSpace(body) == "" {
			body = it.Description
		}
		if utf8.RuneCountInString(body) >= processor.MinFullContent || strings.TrimSpace(it.Link) == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(it *collector.FeedItem) {
			defer wg.Done()
			defer func() { <-sem }()

			raw, err := c.Pages.FetchPage(ctx, it.Link)
			if err != nil {
				c.Logger.WithError(err).WithField("link", it.Link).Warn("fetch article page failed")
				return
			}
			res, err := c.Extractor.Extract(raw)
			if err != nil {
				c.Logger.WithError(err).WithField("link", it.Link).Debug("no article body extracted")
				return
			}
			it.Content = res.Content
			c.Logger.WithField("link", it.Link).WithField("rule", res.Rule).Debug("article body extracted")
		}(it)
	}
	wg.Wait()
}

// AcceptWebhook 校验 title / link 后按 link 幂等写入；created=false 表示 link 已存在，返回的是原记录
func (c *Coordinator) AcceptWebhook(ctx context.Context, payload processor.WebhookPayload) (processor.Post, bool, error) {
	if err := validate(payload); err != nil {
		c.Logger.WithError(err).Info("webhook rejected")
		c.record(ctx, &storage.IngestEvent{
			Kind:    storage.KindWebhook,
			Result:  storage.ResultInvalid,
			Link:    payload.Link,
			Error:   err.Error(),
			Payload: payloadMap(payload),
		})
		c.Metrics.Webhook(storage.ResultInvalid, c.Store.Count())
		return processor.Post{}, false, err
	}

	post, created := c.Store.Add(c.Normalizer.FromWebhook(payload))

	result := storage.ResultOK
	if created {
		c.Logger.WithField("id", post.ID).WithField("link", post.Link).Info("webhook accepted")
	} else {
		result = storage.ResultDuplicate
		c.Logger.WithField("id", post.ID).WithField("link", post.Link).Info("webhook duplicate ignored")
	}
	c.record(ctx, &storage.IngestEvent{
		Kind:    storage.KindWebhook,
		Result:  result,
		Link:    post.Link,
		PostID:  post.ID,
		Count:   c.Store.Count(),
		Payload: payloadMap(payload),
	})
	c.Metrics.Webhook(result, c.Store.Count())
	return post, created, nil
}

func validate(p processor.WebhookPayload) error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(p.Link) == "" {
		return &ValidationError{Field: "link"}
	}
	return nil
}

func (c *Coordinator) record(ctx context.Context, ev *storage.IngestEvent) {
	if err := c.Journal.Record(ctx, ev); err != nil {
		c.Logger.WithError(err).WithField("kind", ev.Kind).Warn("write ingest journal failed")
	}
}

func payloadMap(p processor.WebhookPayload) map[string]interface{} {
	m := map[string]interface{}{
		"title": p.Title,
		"link":  p.Link,
	}
	for k, v := range map[string]string{
		"excerpt":     p.Excerpt,
		"content":     p.Content,
		"fullContent": p.FullContent,
		"pubDate":     p.PubDate,
		"description": p.Description,
		"author":      p.Author,
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}
