// Package logging 提供基于 zerolog 的全局日志与 context 透传。
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Component("recall").Info().Int("candidates", n).Msg("recall done")
//	logging.Ctx(ctx).Warn().Err(err).Msg("tmdb lookup failed")
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config 日志配置。
type Config struct {
	// Level: trace, debug, info, warn, error, disabled（默认 info）
	Level string `yaml:"level"`

	// Format: json 或 console（默认 json）
	Format string `yaml:"format"`

	// Output 默认 os.Stderr
	Output io.Writer `yaml:"-"`
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	initLogger(Config{})
}

// Init 初始化全局 logger，可重复调用。
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

func initLogger(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	log = zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger。
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger 替换全局 logger（测试中常用 zerolog.Nop()）。
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Component 返回带 component 字段的子 logger。
func Component(name string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", name).Logger()
}

type (
	ctxKey       struct{}
	requestIDKey struct{}
)

// WithContext 将 logger 写入 ctx。
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Ctx 从 ctx 取 logger，没有则返回全局 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
			return &l
		}
	}
	l := Logger()
	return &l
}

// NewRequestID 生成请求 ID。
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequest 为 ctx 绑定 request_id 以及携带该字段的 logger。
func WithRequest(ctx context.Context, requestID string) context.Context {
	l := Logger()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return WithContext(ctx, l.With().Str("request_id", requestID).Logger())
}

// RequestIDFrom 返回 WithRequest 绑定的 request_id，没有则返回空串。
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
