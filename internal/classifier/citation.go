package classifier

import (
	"fmt"
	"strings"

	"github.com/LJTian/BlogHub/internal/processor"
)

// SiteName 引用中的网站名
const SiteName = "NEXCAR Blog - Detector de Chuecos"

// CitationStyle 引用格式
type CitationStyle string

const (
	APA     CitationStyle = "apa"
	MLA     CitationStyle = "mla"
	Chicago CitationStyle = "chicago"
	Harvard CitationStyle = "harvard"
)

// Styles 生成全部引用时使用的格式
var Styles = []CitationStyle{APA, MLA, Chicago, Harvard}

// Cite 按格式生成一条引用；未知格式使用只含年份的简化 APA
func Cite(p processor.Post, style CitationStyle) string {
	author := p.Author
	if author == "" {
		author = processor.DefaultAuthor
	}
	// 无法解析的日期按零值输出
	pub, _ := processor.ParseDate(p.PubDate)
	year, month, day := pub.Year(), pub.Month().String(), pub.Day()

	switch CitationStyle(strings.ToLower(string(style))) {
	case APA:
		return fmt.Sprintf("%s. (%d, %s %d). %s. %s. %s", author, year, month, day, p.Title, SiteName, p.Link)
	case MLA:
		return fmt.Sprintf("%s. \"%s.\" %s, %d %s %d, %s.", author, p.Title, SiteName, day, month, year, p.Link)
	case Chicago:
		return fmt.Sprintf("%s. \"%s.\" %s. %s %d, %d. %s.", author, p.Title, SiteName, month, day, year, p.Link)
	case Harvard:
		return fmt.Sprintf("%s %d, '%s', %s, viewed %d %s %d, <%s>.", author, year, p.Title, SiteName, day, month, year, p.Link)
	default:
		return fmt.Sprintf("%s. (%d). %s. %s. %s", author, year, p.Title, SiteName, p.Link)
	}
}

// Citation 检索结果中的一条引用
type Citation struct {
	Citation       string      `json:"citation"`
	RelevanceScore int         `json:"relevanceScore"`
	Matches        []string    `json:"matches"`
	Title          string      `json:"title"`
	Link           string      `json:"link"`
	PubDate        string      `json:"pubDate"`
	Categories     []string    `json:"categories"`
	ContentType    ContentType `json:"contentType"`
}

// FindCitations 相关度检索后按 style 生成引用；query 为空时不返回结果
func FindCitations(posts []processor.Post, query string, style CitationStyle) []Citation {
	if strings.TrimSpace(query) == "" {
		return []Citation{}
	}
	results := Search(posts, query)
	out := make([]Citation, 0, len(results))
	for _, r := range results {
		out = append(out, Citation{
			Citation:       Cite(r.Post, style),
			RelevanceScore: r.Score,
			Matches:        r.Matches,
			Title:          r.Post.Title,
			Link:           r.Post.Link,
			PubDate:        r.Post.PubDate,
			Categories:     r.Metadata.Categories,
			ContentType:    r.Metadata.ContentType,
		})
	}
	return out
}

// CitationIndex 全部文章的引用，按主题、作者、年份与格式分组
type CitationIndex struct {
	ByTopic  map[string][]string        `json:"byTopic"`
	ByAuthor map[string][]string        `json:"byAuthor"`
	ByYear   map[int][]string           `json:"byDate"`
	Formats  map[CitationStyle][]string `json:"formats"`
}

// BuildCitationIndex 分组内使用 APA 格式
func BuildCitationIndex(posts []processor.Post) CitationIndex {
	idx := CitationIndex{
		ByTopic:  make(map[string][]string),
		ByAuthor: make(map[string][]string),
		ByYear:   make(map[int][]string),
		Formats:  make(map[CitationStyle][]string, len(Styles)),
	}
	for _, s := range Styles {
		idx.Formats[s] = []string{}
	}

	for _, p := range posts {
		apa := Cite(p, APA)
		for _, c := range Categorize(p) {
			idx.ByTopic[c] = append(idx.ByTopic[c], apa)
		}
		idx.ByAuthor[p.Author] = append(idx.ByAuthor[p.Author], apa)
		year := p.PublishedAt().Year()
		idx.ByYear[year] = append(idx.ByYear[year], apa)
		for _, s := range Styles {
			idx.Formats[s] = append(idx.Formats[s], Cite(p, s))
		}
	}
	return idx
}
