package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/BlogHub/internal/logging"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>NEXCAR</title>
  <item>
    <title>Cómo validar una factura AMDA</title>
    <link>https://nexcar.substack.com/p/amda</link>
    <description>Resumen corto</description>
    <content:encoded><![CDATA[<p>Cuerpo completo</p>]]></content:encoded>
    <pubDate>Wed, 20 Aug 2025 15:15:37 GMT</pubDate>
    <dc:creator>Equipo NEXCAR</dc:creator>
  </item>
  <item>
    <title>Segundo</title>
    <link>https://nexcar.substack.com/p/segundo</link>
    <description>Solo descripción</description>
    <pubDate>Tue, 19 Aug 2025 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestFeedSourceParsesItems(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	src := NewFeedSource(srv.URL, 0, logging.Discard())
	items, err := src.FetchFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, UserAgent, ua)
	assert.Equal(t, "Cómo validar una factura AMDA", items[0].Title)
	assert.Equal(t, "https://nexcar.substack.com/p/amda", items[0].Link)
	assert.Equal(t, "<p>Cuerpo completo</p>", items[0].Content)
	assert.Equal(t, "Resumen corto", items[0].Description)
	assert.Equal(t, "Wed, 20 Aug 2025 15:15:37 GMT", items[0].PubDate)
	assert.Equal(t, "Equipo NEXCAR", items[0].Author)

	assert.Empty(t, items[1].Content)
	assert.Equal(t, "Solo descripción", items[1].Description)
}

func TestFeedSourceMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer srv.Close()

	_, err := NewFeedSource(srv.URL, 0, logging.Discard()).FetchFeed(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFeedParse))
}

func TestFeedSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items, err := NewFeedSource(srv.URL, 2, logging.Discard()).FetchFeed(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFeedSourceNotFoundIsFetchError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFeedSource(srv.URL, 3, logging.Discard()).FetchFeed(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFeedParse))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestFeedSourceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFeedSource("http://127.0.0.1:1", 0, nil).FetchFeed(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		resp *http.Response
		err  error
		want bool
	}{
		{"network error", nil, errors.New("connection reset"), true},
		{"canceled", nil, context.Canceled, false},
		{"500", &http.Response{StatusCode: 500}, nil, true},
		{"429", &http.Response{StatusCode: 429}, nil, true},
		{"404", &http.Response{StatusCode: 404}, nil, false},
		{"200", &http.Response{StatusCode: 200}, nil, false},
	}
	for _, tc := range cases {
		if got := shouldRetry(tc.resp, tc.err); got != tc.want {
			t.Fatalf("%s: shouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}
