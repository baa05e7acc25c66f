// Package extractor 负责从原始 HTML（文章页或 feed 内嵌正文）中挑出正文，并生成纯文本摘要。
//
// 匹配顺序是固定契约：先按 class 标记找容器，再找 <article>，最后在所有 div 中取内容超过阈值的最大块。
// 解析使用 goquery（真实 DOM），不会出现正则匹配嵌套标签时截断的问题。
package extractor

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinBlockSize 兜底规则中 div 内部 markup 的最小长度（字符数），不超过该值的块不参与比较
const MinBlockSize = 3000

// ContainerMarkers 容器 class 中需要包含的标记子串，按优先级排列
var ContainerMarkers = []string{"post-content", "content", "body", "entry-content"}

// ErrNotFound 所有规则都没有命中；调用方应退回到 feed 提供的较短字段
var ErrNotFound = errors.New("extractor: no content container found")

// Rule 是一条正文选择规则：返回命中的节点，未命中返回 nil 或空 Selection
type Rule struct {
	Name  string
	Match func(doc *goquery.Document) *goquery.Selection
}

// Result 记录命中的规则名与清理后的正文
type Result struct {
	Rule    string
	Content string
}

// DefaultRules 返回默认的规则列表（顺序即优先级）
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(ContainerMarkers)+2)
	for _, m := range ContainerMarkers {
		rules = append(rules, ClassMarkerRule(m))
	}
	rules = append(rules, ArticleRule(), LargestBlockRule(MinBlockSize))
	return rules
}

// ClassMarkerRule 匹配第一个 class 属性包含 marker 的 div
func ClassMarkerRule(marker string) Rule {
	sel := `div[class*="` + marker + `"]`
	return Rule{
		Name: "class:" + marker,
		Match: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(sel).First()
		},
	}
}

// ArticleRule 匹配文档中的第一个 <article>
func ArticleRule() Rule {
	return Rule{
		Name: "article",
		Match: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("article").First()
		},
	}
}

// LargestBlockRule 在所有 div 中挑内部 markup 超过 minSize 的最大块；长度相同时取文档中靠前的
func LargestBlockRule(minSize int) Rule {
	return Rule{
		Name: "largest-block",
		Match: func(doc *goquery.Document) *goquery.Selection {
			var (
				best    *goquery.Selection
				bestLen int
			)
			doc.Find("div").Each(func(_ int, s *goquery.Selection) {
				inner, err := s.Html()
				if err != nil {
					return
				}
				n := len([]rune(inner))
				if n <= minSize || n <= bestLen {
					return
				}
				best, bestLen = s, n
			})
			return best
		},
	}
}

// Extractor 按规则顺序尝试提取正文，第一个产生非空正文的规则胜出
type Extractor struct {
	rules []Rule
}

// New 创建提取器；不传规则时使用 DefaultRules
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Rules 返回当前生效的规则名（按优先级）
func (e *Extractor) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return names
}

// Extract 解析 rawHTML 并返回第一条命中规则的正文
func (e *Extractor) Extract(rawHTML string) (Result, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return Result{}, ErrNotFound
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}, ErrNotFound
	}

	for _, r := range e.rules {
		sel := r.Match(doc)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		content := cleanup(sel)
		if content == "" {
			continue
		}
		return Result{Rule: r.Name, Content: content}, nil
	}
	return Result{}, ErrNotFound
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// cleanup 去掉 script/style，合并连续空行并去掉首尾空白
func cleanup(sel *goquery.Selection) string {
	sel.Find("script, style").Remove()
	inner, err := sel.Html()
	if err != nil {
		return ""
	}
	inner = blankLines.ReplaceAllString(inner, "\n")
	return strings.TrimSpace(inner)
}

var defaultExtractor = New()

// ExtractBody 使用默认规则提取正文
func ExtractBody(rawHTML string) (string, error) {
	res, err := defaultExtractor.Extract(rawHTML)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}
