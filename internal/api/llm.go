package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/BlogHub/internal/classifier"
	"github.com/LJTian/BlogHub/internal/extractor"
	"github.com/LJTian/BlogHub/internal/processor"
)

// llmPost 面向 LLM 的文章：原始字段 + markdown 正文 + 派生元数据
type llmPost struct {
	processor.Post
	Markdown string              `json:"markdown"`
	Metadata classifier.Metadata `json:"metadata"`
}

type llmPostsPayload struct {
	TotalPosts int       `json:"totalPosts"`
	Posts      []llmPost `json:"posts"`
}

func (s *Server) llmPosts(c *gin.Context) {
	ctx := c.Request.Context()
	key := s.llmCacheKey()

	var data llmPostsPayload
	if !s.cache.Get(ctx, key, &data) {
		posts := s.store.GetAll()
		data = llmPostsPayload{TotalPosts: len(posts), Posts: make([]llmPost, 0, len(posts))}
		for _, p := range posts {
			md, err := extractor.Markdown(p.FullContent)
			if err != nil {
				s.logger.WithError(err).WithField("id", p.ID).Debug("markdown conversion failed")
				md = extractor.StripTags(p.FullContent)
			}
			data.Posts = append(data.Posts, llmPost{Post: p, Markdown: md, Metadata: classifier.Describe(p)})
		}
		s.cache.Set(ctx, key, data)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": s.timestamp(),
		"data":      data,
	})
}

func (s *Server) llmCacheKey() string {
	return fmt.Sprintf("posts:llm:%s:v%d", s.instance, s.store.Version())
}

func (s *Server) analyzeAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": s.timestamp(),
		"analysis":  classifier.Analyze(s.store.GetAll()),
	})
}

type analyzeRequest struct {
	Query        string `json:"query"`
	PostID       string `json:"postId"`
	AnalysisType string `json:"analysisType"`
}

type analyzeResult struct {
	PostID         string                 `json:"postId"`
	Title          string                 `json:"title"`
	RelevanceScore int                    `json:"relevanceScore"`
	Matches        []string               `json:"matches"`
	ContentType    classifier.ContentType `json:"contentType"`
	Categories     []string               `json:"categories"`
	WordCount      int                    `json:"wordCount"`
	ReadingTime    int                    `json:"readingTime"`
	RiskLevel      classifier.RiskLevel   `json:"riskLevel"`
	Excerpt        string                 `json:"excerpt"`
}

type analyzeSummary struct {
	TotalMatches   int      `json:"totalMatches"`
	RelevanceScore float64  `json:"relevanceScore"`
	KeyInsights    []string `json:"keyInsights"`
}

// analyzeQuery query 与 postId 至少一个；postId 限定范围后再按 query 计算相关度
func (s *Server) analyzeQuery(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid JSON body: " + err.Error()})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	req.PostID = strings.TrimSpace(req.PostID)
	if req.Query == "" && req.PostID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "either query or postId is required"})
		return
	}

	targets := s.store.GetAll()
	if req.PostID != "" {
		p, err := s.store.GetByID(req.PostID)
		if err != nil {
			s.writeError(c, fmt.Errorf("post %s: %w", req.PostID, err))
			return
		}
		targets = []processor.Post{p}
	}

	hits := classifier.Search(targets, req.Query)
	results := make([]analyzeResult, 0, len(hits))
	total := 0
	for _, h := range hits {
		total += h.Score
		results = append(results, analyzeResult{
			PostID:         h.Post.ID,
			Title:          h.Post.Title,
			RelevanceScore: h.Score,
			Matches:        h.Matches,
			ContentType:    h.Metadata.ContentType,
			Categories:     h.Metadata.Categories,
			WordCount:      h.Metadata.WordCount,
			ReadingTime:    h.Metadata.ReadingTime,
			RiskLevel:      h.Metadata.RiskLevel,
			Excerpt:        h.Post.Excerpt,
		})
	}

	summary := analyzeSummary{TotalMatches: len(results), KeyInsights: []string{}}
	if len(results) > 0 {
		summary.RelevanceScore = float64(total) / float64(len(results))
		top := results[0]
		summary.KeyInsights = append(summary.KeyInsights,
			"Most relevant post: "+top.Title,
			"Content type: "+string(top.ContentType),
			"Risk level: "+string(top.RiskLevel),
			"Categories: "+strings.Join(top.Categories, ", "),
		)
	}

	query := req.Query
	if query == "" {
		query = "Post ID: " + req.PostID
	}
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "general"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"timestamp":    s.timestamp(),
		"query":        query,
		"analysisType": analysisType,
		"analysis": gin.H{
			"results": results,
			"summary": summary,
		},
	})
}

func (s *Server) allCitations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": s.timestamp(),
		"citations": classifier.BuildCitationIndex(s.store.GetAll()),
	})
}

type citationRequest struct {
	Query  string `json:"query"`
	Topic  string `json:"topic"`
	Format string `json:"format"`
}

func (s *Server) searchCitations(c *gin.Context) {
	var req citationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid JSON body: " + err.Error()})
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Topic)
	}
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "either query or topic is required"})
		return
	}
	format := classifier.CitationStyle(strings.ToLower(strings.TrimSpace(req.Format)))
	if format == "" {
		format = classifier.APA
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": s.timestamp(),
		"query":     query,
		"format":    format,
		"citations": classifier.FindCitations(s.store.GetAll(), query, format),
	})
}

type postStats struct {
	Total          int `json:"total"`
	WithImages     int `json:"withImages"`
	WithLinks      int `json:"withLinks"`
	WithSources    int `json:"withSources"`
	MentionsREPUVE int `json:"mentionsREPUVE"`
	MentionsAMDA   int `json:"mentionsAMDA"`
	MentionsSAT    int `json:"mentionsSAT"`
	HighRisk       int `json:"highRisk"`
}

type categoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) status(c *gin.Context) {
	posts := s.store.GetAll()
	analysis := classifier.Analyze(posts)

	stats := postStats{Total: len(posts)}
	lastUpdate := ""
	for _, p := range posts {
		md := classifier.Describe(p)
		if md.HasImages {
			stats.WithImages++
		}
		if md.HasLinks {
			stats.WithLinks++
		}
		if md.HasSources {
			stats.WithSources++
		}
		if md.MentionsREPUVE {
			stats.MentionsREPUVE++
		}
		if md.MentionsAMDA {
			stats.MentionsAMDA++
		}
		if md.MentionsSAT {
			stats.MentionsSAT++
		}
		if md.RiskLevel == classifier.RiskHigh {
			stats.HighRisk++
		}
		// createdAt 统一为 ISO-8601 UTC，字符串比较即时间比较
		if p.CreatedAt > lastUpdate {
			lastUpdate = p.CreatedAt
		}
	}

	top := make([]categoryCount, 0, len(analysis.Insights.MostCommonTopics))
	for _, name := range analysis.Insights.MostCommonTopics {
		top = append(top, categoryCount{Name: name, Count: analysis.Overview.Categories[name]})
	}

	postsHealth := "healthy"
	if len(posts) == 0 {
		postsHealth = "warning"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": s.timestamp(),
		"system": gin.H{
			"status":  "healthy",
			"version": ServiceVersion,
		},
		"statistics": gin.H{
			"posts": stats,
			"content": gin.H{
				"totalWords":         analysis.Overview.TotalWords,
				"averageReadingTime": analysis.Overview.AverageReadingTime,
				"lastUpdate":         lastUpdate,
			},
			"categories": gin.H{
				"total":         len(analysis.Overview.Categories),
				"distribution":  analysis.Overview.Categories,
				"topCategories": top,
			},
			"contentTypes": analysis.Overview.ContentTypes,
		},
		"health": gin.H{
			"overall": "healthy",
			"posts":   postsHealth,
			"cache":   s.cache != nil,
			"journal": s.journal != nil,
		},
	})
}
