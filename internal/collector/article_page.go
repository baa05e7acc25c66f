package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

const pageRequestTimeout = 10 * time.Second

// PageSource 用 colly 抓取单篇文章页面，只返回原始 HTML，解析交给 extractor
type PageSource struct {
	Timeout time.Duration
	// AllowedDomains 为空时不限制域名
	AllowedDomains []string
}

func NewPageSource(timeout time.Duration, allowedDomains ...string) *PageSource {
	if timeout <= 0 {
		timeout = pageRequestTimeout
	}
	return &PageSource{Timeout: timeout, AllowedDomains: allowedDomains}
}

func (p *PageSource) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	opts := []colly.CollectorOption{colly.UserAgent(UserAgent)}
	if len(p.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(p.AllowedDomains...))
	}
	c := colly.NewCollector(opts...)
	c.WithTransport(&ctxTransport{ctx: ctx, base: http.DefaultTransport})
	c.SetRequestTimeout(p.Timeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		body     string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	c.Wait()

	if ctx.Err() != nil {
		return "", fmt.Errorf("fetch page %s: %w", pageURL, ctx.Err())
	}
	if fetchErr != nil {
		return "", fmt.Errorf("fetch page %s: %w", pageURL, fetchErr)
	}
	return body, nil
}

// ctxTransport 把调用方的 ctx 挂到每个请求上，取消时中断进行中的连接
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
