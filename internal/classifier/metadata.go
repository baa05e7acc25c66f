package classifier

import (
	"strings"

	"github.com/LJTian/BlogHub/internal/extractor"
	"github.com/LJTian/BlogHub/internal/processor"
)

// WordsPerMinute 阅读速度
const WordsPerMinute = 200

type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

// Metadata 每次读取时重新计算，不写回 Post
type Metadata struct {
	WordCount      int         `json:"wordCount"`
	ReadingTime    int         `json:"readingTime"`
	HasImages      bool        `json:"hasImages"`
	HasLinks       bool        `json:"hasLinks"`
	HasSources     bool        `json:"hasSources"`
	MentionsREPUVE bool        `json:"mentionsREPUVE"`
	MentionsAMDA   bool        `json:"mentionsAMDA"`
	MentionsSAT    bool        `json:"mentionsSAT"`
	RiskLevel      RiskLevel   `json:"riskLevel"`
	ContentType    ContentType `json:"contentType"`
	Categories     []string    `json:"categories"`
}

// Describe 计算一篇文章的派生元数据
func Describe(p processor.Post) Metadata {
	t := lowered(p)
	words := WordCount(p.FullContent)
	return Metadata{
		WordCount:      words,
		ReadingTime:    ReadingTime(words),
		HasImages:      strings.Contains(p.FullContent, "<img"),
		HasLinks:       strings.Contains(p.FullContent, "<a href"),
		HasSources:     strings.Contains(t.body, "fuentes") || strings.Contains(t.body, "referencias"),
		MentionsREPUVE: strings.Contains(t.body, "repuve"),
		MentionsAMDA:   strings.Contains(t.body, "amda"),
		MentionsSAT:    strings.Contains(t.body, "sat"),
		RiskLevel:      riskLevel(t),
		ContentType:    classifyType(t),
		Categories:     categorize(t),
	}
}

// WordCount 去标签后按空白切分
func WordCount(html string) int {
	return len(strings.Fields(extractor.StripTags(html)))
}

// ReadingTime 向上取整的分钟数
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

func riskLevel(t text) RiskLevel {
	if strings.Contains(t.body, "riesgo") || strings.Contains(t.body, "peligro") {
		return RiskHigh
	}
	return RiskMedium
}
