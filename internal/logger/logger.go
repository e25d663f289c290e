package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger

// Init инициализирует глобальный логгер
// env: "development" (текст, debug) или любой другой (JSON, info)
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter - то же, что Init, но пишет в w (тесты, CLI)
func InitWithWriter(env string, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "development", "dev", "local":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	case "test":
		opts.Level = slog.LevelWarn
		opts.AddSource = false
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError создает логгер с полем error
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// WorkerLog логирует операцию фонового воркера
func WorkerLog(worker, operation string, err error, args ...any) {
	fields := append([]any{"worker", worker, "operation", operation}, args...)

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("worker operation failed", fields...)
		return
	}
	GetLogger().Debug("worker operation completed", fields...)
}

// SideEffectLog логирует результат внешнего эффекта события outbox (email, push).
// Ошибка пишется как warning: решение о повторе принимает воркер.
func SideEffectLog(effect, event string, err error, args ...any) {
	fields := append([]any{"effect", effect, "event", event}, args...)

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Warn("side effect failed", fields...)
		return
	}
	GetLogger().Debug("side effect delivered", fields...)
}
