package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/mmcdole/gofeed"

	"github.com/LJTian/BlogHub/internal/logging"
)

const (
	// DefaultFeedURL NEXCAR 在 Substack 上的 RSS
	DefaultFeedURL = "https://nexcar.substack.com/feed"
	// UserAgent 抓取 feed 与文章页时使用的 UA
	UserAgent = "Mozilla/5.0 (compatible; NEXCAR-Blog/1.0)"

	feedMaxResponseBytes = 8 << 20
	feedRetryBaseDelay   = 200 * time.Millisecond
	feedRetryMaxDelay    = 2 * time.Second
)

// ErrFeedParse feed 内容无法解析为 RSS/Atom；其余错误均视为抓取失败
var ErrFeedParse = errors.New("feed parse failed")

// FeedSource 通过 HTTP 拉取 RSS 并用 gofeed 解析
type FeedSource struct {
	URL        string
	MaxRetries int
	Client     *http.Client
	Logger     logging.Logger

	executor failsafe.Executor[*http.Response]
}

func NewFeedSource(url string, maxRetries int, logger logging.Logger) *FeedSource {
	if url == "" {
		url = DefaultFeedURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &FeedSource{
		URL:        url,
		MaxRetries: maxRetries,
		Client:     &http.Client{},
		Logger:     logger,
		executor:   failsafe.With[*http.Response](newRetryPolicy(maxRetries)),
	}
}

// newRetryPolicy 网络错误、5xx 与 429 重试，其余状态码直接返回
func newRetryPolicy(maxRetries int) retrypolicy.RetryPolicy[*http.Response] {
	return retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(feedRetryBaseDelay, feedRetryMaxDelay).
		WithMaxRetries(maxRetries).
		WithJitterFactor(0.1).
		HandleIf(shouldRetry).
		Build()
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return resp != nil && (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
}

func (f *FeedSource) Name() string {
	return "rss:" + f.URL
}

// FetchFeed 返回 feed 中全部条目，顺序与 feed 声明一致；截断由调用方决定
func (f *FeedSource) FetchFeed(ctx context.Context) ([]FeedItem, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	resp, err := f.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

		resp, err := f.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if shouldRetry(resp, nil) {
			// 需要重试的响应不会再读 body，提前释放连接
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
		}
		return resp, nil
	})
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("fetch feed %s: %w", f.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", f.URL, resp.StatusCode)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, feedMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedParse, f.URL, err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, convertFeedItem(it))
	}

	if f.Logger != nil {
		f.Logger.WithField("url", f.URL).WithField("count", len(items)).Debug("feed fetched")
	}
	return items, nil
}

// convertFeedItem gofeed 已把 content:encoded 映射到 Content、description 映射到 Description
func convertFeedItem(it *gofeed.Item) FeedItem {
	author := ""
	if it.Author != nil {
		author = it.Author.Name
	}
	pubDate := it.Published
	if pubDate == "" {
		pubDate = it.Updated
	}
	return FeedItem{
		Title:       strings.TrimSpace(it.Title),
		Link:        strings.TrimSpace(it.Link),
		Content:     it.Content,
		Description: it.Description,
		PubDate:     strings.TrimSpace(pubDate),
		Author:      strings.TrimSpace(author),
	}
}
