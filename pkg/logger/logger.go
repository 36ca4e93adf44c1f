package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"stream-compiler-service/pkg/config"
)

// Logger 封装logrus，统一日志输出
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// NewLogger 根据配置创建日志器
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	logger := &Logger{entry: l}

	if cfg != nil && strings.EqualFold(cfg.Log.Output, "file") && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				logger.file = f
				l.SetOutput(io.MultiWriter(os.Stdout, f))
				return logger
			}
		}
		l.Warnf("failed to open log file %s, falling back to stdout", cfg.Log.Filename)
	}

	l.SetOutput(os.Stdout)
	return logger
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close 关闭日志文件句柄
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

// raw 返回底层logrus实例，nil接收者退回全局日志器
func (l *Logger) raw() *logrus.Logger {
	if l == nil || l.entry == nil {
		return std()
	}
	return l.entry
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.raw().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.raw().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.raw().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.raw().Errorf(format, args...) }

func std() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Debug 输出调试日志，fields为结构化字段
func Debug(msg string, fields map[string]interface{}) {
	std().WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info 输出信息日志，fields为结构化字段
func Info(msg string, fields map[string]interface{}) {
	std().WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn 输出警告日志，fields为结构化字段
func Warn(msg string, fields map[string]interface{}) {
	std().WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error 输出错误日志，fields为结构化字段
func Error(msg string, fields map[string]interface{}) {
	std().WithFields(logrus.Fields(fields)).Error(msg)
}

func Debugf(format string, args ...interface{}) { std().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { std().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { std().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { std().Errorf(format, args...) }

// Fatal 输出致命错误并退出
func Fatal(msg string) {
	std().Fatal(msg)
}

// Fatalf 输出致命错误并退出
func Fatalf(format string, args ...interface{}) {
	std().Fatal(fmt.Sprintf(format, args...))
}
