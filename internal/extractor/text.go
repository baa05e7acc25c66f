package extractor

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const (
	// ExcerptLimit 摘要最多保留的字符数（按 rune）
	ExcerptLimit = 300
	// Ellipsis 摘要截断后追加的标记
	Ellipsis = "..."
	// NoDescription 正文为空时的摘要占位
	NoDescription = "Sin descripción disponible"
)

// StripTags 去掉所有标签，返回纯文本；script/style 的内容一并丢弃，实体会被解码
func StripTags(markup string) string {
	if markup == "" {
		return ""
	}
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

// Excerpt 由正文生成摘要：去标签 → 截断到 ExcerptLimit → 去首尾空白 → 追加省略号
func Excerpt(markup string) string {
	text := StripTags(markup)
	if strings.TrimSpace(text) == "" {
		return NoDescription
	}
	return strings.TrimSpace(truncateRunes(text, ExcerptLimit)) + Ellipsis
}

// truncateRunes 按 rune 截断，避免切断多字节字符（西语重音字母）
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// Markdown 将正文 HTML 转为 markdown，供 LLM 接口输出
func Markdown(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
