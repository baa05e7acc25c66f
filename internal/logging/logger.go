package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger 全局统一使用 logrus
type Logger = *logrus.Logger

// Fields 结构化字段
type Fields = logrus.Fields

// NewLogger 创建 JSON 格式的 logger，level 取 debug / info / warn / error，其他值按 info 处理
func NewLogger(level string) Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel 将配置中的日志级别转换为 logrus.Level
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard 丢弃所有输出，测试用
func Discard() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
