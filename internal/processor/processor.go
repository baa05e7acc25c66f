package processor

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LJTian/BlogHub/internal/collector"
	"github.com/LJTian/BlogHub/internal/extractor"
)

const (
	// DefaultAuthor 来源没有作者时使用的机构名
	DefaultAuthor = "NEXCAR"
	// NoTitle 标题缺失时的占位
	NoTitle = "Sin título"
	// NoLink 链接缺失时的占位；Store 对该值不做去重
	NoLink = "#"
	// NoContent 正文缺失时的占位
	NoContent = "Sin contenido"
	// MinFullContent feed 正文短于该长度（按字符）时视为摘要，改用 excerpt
	MinFullContent = 500
)

// isoLayout 与 JS Date.toISOString 一致：UTC、毫秒、Z 结尾
const isoLayout = "2006-01-02T15:04:05.000Z"

// Post 是写入存储层的统一结构
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	FullContent string `json:"fullContent"`
	Excerpt     string `json:"excerpt"`
	PubDate     string `json:"pubDate"`
	Author      string `json:"author"`
	CreatedAt   string `json:"createdAt"`
}

// PublishedAt 解析 PubDate；无法解析时返回零值
func (p Post) PublishedAt() time.Time {
	t, _ := ParseDate(p.PubDate)
	return t
}

// WebhookPayload 外部推送的单篇文章，只有 title 与 link 必填
type WebhookPayload struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content,omitempty"`
	FullContent string `json:"fullContent,omitempty"`
	PubDate     string `json:"pubDate,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
}

// Normalizer 把 feed 条目与 webhook 负载映射成 Post，并补齐默认值
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// WithClock 替换时间源，测试用
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

func (n *Normalizer) timestamp() string {
	return n.now().UTC().Format(isoLayout)
}

// FromFeedItem 处理 feed 条目：content:encoded → description → 占位；
// 正文不足 MinFullContent 个字符时认为只是摘要，改用 excerpt 作为正文
func (n *Normalizer) FromFeedItem(it collector.FeedItem) Post {
	content := firstNonEmpty(it.Content, it.Description)
	excerpt := extractor.Excerpt(content)
	if content == "" {
		content = NoContent
	}
	if utf8.RuneCountInString(content) < MinFullContent {
		content = excerpt
	}

	return Post{
		Title:       orDefault(strings.TrimSpace(it.Title), NoTitle),
		Link:        orDefault(strings.TrimSpace(it.Link), NoLink),
		FullContent: content,
		Excerpt:     excerpt,
		PubDate:     orDefault(strings.TrimSpace(it.PubDate), n.timestamp()),
		Author:      orDefault(strings.TrimSpace(it.Author), DefaultAuthor),
		CreatedAt:   n.timestamp(),
	}
}

// FromWebhook 处理 webhook 负载：正文 fullContent → content → description → excerpt；
// 摘要 excerpt → description → content → fullContent，统一去标签截断
func (n *Normalizer) FromWebhook(p WebhookPayload) Post {
	content := firstNonEmpty(p.FullContent, p.Content, p.Description, p.Excerpt)
	if content == "" {
		content = NoContent
	}
	excerpt := extractor.NoDescription
	if src := firstNonEmpty(p.Excerpt, p.Description, p.Content, p.FullContent); src != "" {
		excerpt = extractor.Excerpt(src)
	}

	return Post{
		Title:       orDefault(strings.TrimSpace(p.Title), NoTitle),
		Link:        orDefault(strings.TrimSpace(p.Link), NoLink),
		FullContent: content,
		Excerpt:     excerpt,
		PubDate:     orDefault(strings.TrimSpace(p.PubDate), n.timestamp()),
		Author:      orDefault(strings.TrimSpace(p.Author), DefaultAuthor),
		CreatedAt:   n.timestamp(),
	}
}

// ProcessFeed 只取前 limit 条（不重新排序，feed 顺序默认即新→旧），
// 批内按 link 去重，并生成 rss-<毫秒时间戳>-<序号> 形式的 ID
func (n *Normalizer) ProcessFeed(items []collector.FeedItem, limit int) []Post {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	ts := n.now().UnixMilli()
	out := make([]Post, 0, len(items))
	seen := make(map[string]struct{})

	for i, it := range items {
		p := n.FromFeedItem(it)
		if p.Link != NoLink {
			if _, ok := seen[p.Link]; ok {
				continue
			}
			seen[p.Link] = struct{}{}
		}
		p.ID = fmt.Sprintf("rss-%d-%d", ts, i)
		out = append(out, p)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
