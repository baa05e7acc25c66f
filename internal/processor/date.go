package processor

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate 兼容 RFC-2822（feed 的 pubDate）与 ISO-8601（webhook / createdAt）等常见格式
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
