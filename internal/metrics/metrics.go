// Package metrics 汇总采集与 HTTP 层的 Prometheus 指标。
// 每个 Collector 使用独立的 Registry，便于在测试中重复创建。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	feedSyncs   *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
	storedPosts prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.feedSyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_sync_total",
		Help:      "Feed synchronisations by result (ok, fallback, kept).",
	}, []string{"result"})

	c.webhooks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_total",
		Help:      "Webhook pushes by result (ok, duplicate, invalid).",
	}, []string{"result"})

	c.storedPosts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_posts",
		Help:      "Number of posts currently held in memory.",
	})

	c.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "endpoint", "status"})

	c.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	c.registry.MustRegister(c.feedSyncs, c.webhooks, c.storedPosts, c.httpRequests, c.httpDuration)
	return c
}

// FeedSync 记录一次 feed 同步的结果与同步后的文章数
func (c *Collector) FeedSync(result string, stored int) {
	if c == nil {
		return
	}
	c.feedSyncs.WithLabelValues(result).Inc()
	c.storedPosts.Set(float64(stored))
}

// Webhook 记录一次 webhook 推送的结果
func (c *Collector) Webhook(result string, stored int) {
	if c == nil {
		return
	}
	c.webhooks.WithLabelValues(result).Inc()
	c.storedPosts.Set(float64(stored))
}

// Middleware 统计请求数与耗时；endpoint 使用路由模板，避免 ID 造成标签爆炸
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		c.httpRequests.WithLabelValues(ctx.Request.Method, endpoint, status).Inc()
		c.httpDuration.WithLabelValues(ctx.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层 registry，测试时用于读取指标
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
