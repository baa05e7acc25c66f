package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LJTian/BlogHub/internal/ingest"
	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/metrics"
	"github.com/LJTian/BlogHub/internal/processor"
	"github.com/LJTian/BlogHub/internal/storage"
)

const (
	ServiceName    = "NEXCAR Blog API"
	ServiceVersion = "1.0.0"

	isoLayout = "2006-01-02T15:04:05.000Z"
)

type Server struct {
	store   *storage.Store
	ingest  *ingest.Coordinator
	cache   *storage.ListCache
	journal *storage.Journal
	metrics *metrics.Collector
	logger  logging.Logger
	now     func() time.Time

	// instance 区分进程，Store 版本号每次启动都从 0 开始，Redis 却是共享且跨重启的
	instance string
}

// Option 可选依赖
type Option func(*Server)

func WithCache(c *storage.ListCache) Option   { return func(s *Server) { s.cache = c } }
func WithJournal(j *storage.Journal) Option   { return func(s *Server) { s.journal = j } }
func WithMetrics(m *metrics.Collector) Option { return func(s *Server) { s.metrics = m } }
func WithClock(now func() time.Time) Option   { return func(s *Server) { s.now = now } }

func NewServer(store *storage.Store, coord *ingest.Coordinator, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{store: store, ingest: coord, logger: logger, now: time.Now, instance: uuid.NewString()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewRouter 创建 gin engine；错误方法返回 405
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method not allowed",
			"message": c.Request.Method + " is not supported on " + c.Request.URL.Path,
		})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "route not found"})
	})
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	a := r.Group("/api")
	{
		a.GET("/posts", s.listPosts)
		a.GET("/posts/:id", s.getPost)
		a.GET("/rss", s.syncFeed)
		a.POST("/webhook", s.webhook)
		a.GET("/ingest/events", s.ingestEvents)
	}

	llm := a.Group("/llm")
	{
		llm.GET("/posts", s.llmPosts)
		llm.GET("/analyze", s.analyzeAll)
		llm.POST("/analyze", s.analyzeQuery)
		llm.GET("/citations", s.allCitations)
		llm.POST("/citations", s.searchCitations)
		llm.GET("/status", s.status)
	}
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(isoLayout)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": s.timestamp(),
		"service":   ServiceName,
		"version":   ServiceVersion,
		"posts":     gin.H{"count": s.store.Count()},
	})
}

func (s *Server) listPosts(c *gin.Context) {
	posts := s.store.GetAll()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"posts":     posts,
		"count":     len(posts),
		"timestamp": s.timestamp(),
	})
}

func (s *Server) getPost(c *gin.Context) {
	post, err := s.store.GetByID(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"post":      post,
		"timestamp": s.timestamp(),
	})
}

// syncFeed 同步总会返回文章（最差是兜底文章），因此始终 200
func (s *Server) syncFeed(c *gin.Context) {
	posts := s.ingest.SyncFromFeed(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"posts":     posts,
		"count":     len(posts),
		"timestamp": s.timestamp(),
	})
}

func (s *Server) webhook(c *gin.Context) {
	var payload processor.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid JSON body: " + err.Error()})
		return
	}

	post, created, err := s.ingest.AcceptWebhook(c.Request.Context(), payload)
	if err != nil {
		s.writeError(c, err)
		return
	}
	message := "post added"
	if !created {
		message = "post already exists"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   message,
		"created":   created,
		"post":      post,
		"count":     s.store.Count(),
		"timestamp": s.timestamp(),
	})
}

func (s *Server) ingestEvents(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false, "events": []storage.IngestEvent{}, "timestamp": s.timestamp()})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	events, err := s.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": true, "events": events, "count": len(events), "timestamp": s.timestamp()})
}

// writeError 校验失败 400，找不到 404，其他 500
func (s *Server) writeError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": verr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found", "message": err.Error()})
	default:
		s.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "unexpected error"})
	}
}
