package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedSyncAndWebhookCounters(t *testing.T) {
	c := New("bloghub")
	c.FeedSync("ok", 3)
	c.FeedSync("fallback", 1)
	c.Webhook("duplicate", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.feedSyncs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.feedSyncs.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.webhooks.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storedPosts))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.FeedSync("ok", 1)
	c.Webhook("ok", 1)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := New("bloghub")

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/api/posts/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/posts/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "bloghub_http_requests_total"))
}
