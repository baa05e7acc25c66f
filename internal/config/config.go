package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/LJTian/BlogHub/internal/logging"
)

type Config struct {
	AppPort  string
	LogLevel string

	FeedURL          string
	FeedTimeout      time.Duration
	FeedItemLimit    int
	FeedMaxRetries   int
	FetchFullContent bool
	// KeepOnFeedFailure 同步失败时保留已有文章，而不是换成兜底文章
	KeepOnFeedFailure bool

	// SyncCronSpec 为空时不启动定时同步
	SyncCronSpec string

	// 以下两项为空表示不启用
	RedisAddr   string
	PostgresDSN string
}

// LoadEnv 存在 .env 时先加载（不覆盖已有环境变量）
func LoadEnv(files ...string) []string {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}

func Load() *Config {
	return &Config{
		AppPort:           getEnv("APP_PORT", "9000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		FeedURL:           getEnv("FEED_URL", "https://nexcar.substack.com/feed"),
		FeedTimeout:       getEnvDuration("FEED_TIMEOUT", 15*time.Second),
		FeedItemLimit:     getEnvInt("FEED_ITEM_LIMIT", 3),
		FeedMaxRetries:    getEnvInt("FEED_MAX_RETRIES", 2),
		FetchFullContent:  getEnvBool("FETCH_FULL_CONTENT", false),
		KeepOnFeedFailure: getEnvBool("KEEP_ON_FEED_FAILURE", false),
		SyncCronSpec:      getEnv("SYNC_CRON_SPEC", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
	}
}

// Log 打印加载结果，不输出 DSN 等敏感值
func (c *Config) Log(logger logging.Logger) {
	logger.WithFields(logging.Fields{
		"port":        c.AppPort,
		"feed":        c.FeedURL,
		"feed_limit":  c.FeedItemLimit,
		"cron":        c.SyncCronSpec,
		"redis":       c.RedisAddr != "",
		"journal":     c.PostgresDSN != "",
		"fetch_pages": c.FetchFullContent,
	}).Info("config loaded")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration 支持 "15s" 这类写法，纯数字按秒处理
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
