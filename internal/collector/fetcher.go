package collector

import "context"

// FeedItem 是 feed 解析后的一条文章，字段保持原样，由 processor 统一补默认值
type FeedItem struct {
	Title string
	Link  string
	// Content 对应 content:encoded（Atom 下为 content），通常是完整正文
	Content string
	// Description 对应 description/summary，通常是较短的摘要
	Description string
	PubDate     string
	Author      string
}

// FeedFetcher 抽象 RSS 数据源
type FeedFetcher interface {
	Name() string
	FetchFeed(ctx context.Context) ([]FeedItem, error)
}

// PageFetcher 抓取单篇文章页面的原始 HTML
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}
