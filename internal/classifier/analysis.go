package classifier

import (
	"math"
	"sort"
	"strings"

	"github.com/LJTian/BlogHub/internal/processor"
)

const topTopics = 5

// Mentions 提到各机构的文章数
type Mentions struct {
	REPUVE int `json:"REPUVE"`
	AMDA   int `json:"AMDA"`
	SAT    int `json:"SAT"`
}

// Overview 文章集合的汇总统计
type Overview struct {
	TotalPosts         int                 `json:"totalPosts"`
	TotalWords         int                 `json:"totalWords"`
	AverageReadingTime int                 `json:"averageReadingTime"`
	ContentTypes       map[ContentType]int `json:"contentTypes"`
	Categories         map[string]int      `json:"categories"`
	RiskLevels         map[RiskLevel]int   `json:"riskLevels"`
	Mentions           Mentions            `json:"mentions"`
}

type Insights struct {
	MostCommonTopics []string  `json:"mostCommonTopics"`
	RiskAssessment   RiskLevel `json:"riskAssessment"`
}

type Analysis struct {
	Overview Overview `json:"overview"`
	Insights Insights `json:"insights"`
}

// Analyze 汇总整个集合；超过一半文章为高风险时整体评估为 high
func Analyze(posts []processor.Post) Analysis {
	ov := Overview{
		TotalPosts:   len(posts),
		ContentTypes: make(map[ContentType]int),
		Categories:   make(map[string]int),
		RiskLevels:   make(map[RiskLevel]int),
	}

	// 分类首次出现的顺序，用于同频时的稳定排序
	var order []string
	readingTotal := 0

	for _, p := range posts {
		md := Describe(p)
		ov.TotalWords += md.WordCount
		readingTotal += md.ReadingTime
		ov.ContentTypes[md.ContentType]++
		ov.RiskLevels[md.RiskLevel]++
		for _, c := range md.Categories {
			if ov.Categories[c] == 0 {
				order = append(order, c)
			}
			ov.Categories[c]++
		}
		if md.MentionsREPUVE {
			ov.Mentions.REPUVE++
		}
		if md.MentionsAMDA {
			ov.Mentions.AMDA++
		}
		if md.MentionsSAT {
			ov.Mentions.SAT++
		}
	}
	if len(posts) > 0 {
		ov.AverageReadingTime = int(math.Round(float64(readingTotal) / float64(len(posts))))
	}

	sort.SliceStable(order, func(a, b int) bool { return ov.Categories[order[a]] > ov.Categories[order[b]] })
	if len(order) > topTopics {
		order = order[:topTopics]
	}

	risk := RiskMedium
	if float64(ov.RiskLevels[RiskHigh]) > float64(len(posts))*0.5 {
		risk = RiskHigh
	}

	return Analysis{
		Overview: ov,
		Insights: Insights{MostCommonTopics: order, RiskAssessment: risk},
	}
}

// 相关度权重
const (
	titleRelevance    = 10
	contentRelevance  = 5
	categoryRelevance = 3
)

// SearchResult 单篇文章的相关度
type SearchResult struct {
	Post     processor.Post `json:"-"`
	Score    int            `json:"relevanceScore"`
	Matches  []string       `json:"matches"`
	Metadata Metadata       `json:"-"`
}

// Search 标题包含 query +10，正文包含 +5，每个包含 query 的分类 +3；
// query 为空时返回全部文章（得分均为 0），否则去掉 0 分；按得分降序稳定排序
func Search(posts []processor.Post, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]SearchResult, 0, len(posts))

	for _, p := range posts {
		md := Describe(p)
		score := 0
		matches := []string{}
		if q != "" {
			t := lowered(p)
			if strings.Contains(t.title, q) {
				score += titleRelevance
				matches = append(matches, "title")
			}
			if strings.Contains(t.body, q) {
				score += contentRelevance
				matches = append(matches, "content")
			}
			for _, c := range md.Categories {
				if strings.Contains(strings.ToLower(c), q) {
					score += categoryRelevance
					matches = append(matches, "category: "+c)
				}
			}
			if score == 0 {
				continue
			}
		}
		out = append(out, SearchResult{Post: p, Score: score, Matches: matches, Metadata: md})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}
