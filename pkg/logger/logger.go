package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 常用欄位名稱
const (
	FieldComponent = "component"
	FieldUserKey   = "user_key"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldMethod    = "method"
	FieldDuration  = "duration_ms"
)

// Config 日誌設定
type Config struct {
	// Level debug | info | warn | error
	Level string `yaml:"level"`
	// Format text | json
	Format string `yaml:"format"`
}

// New 依設定建立 slog.Logger
//
// 參數:
//
//	cfg: 日誌設定，空值使用 info / text
//	w: 輸出位置，nil 時為 os.Stdout
//
// 回傳:
//
//	*slog.Logger: logger 實例
//	error: 等級或格式無法辨識
func New(cfg Config, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}

// ParseLevel 解析日誌等級，空字串為 info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Component 回傳帶有 component 欄位的子 logger；logger 為 nil 時使用 slog.Default()
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(FieldComponent, name)
}

// Discard 不輸出任何內容的 logger (測試用)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
