package logger

import (
	"context"
	"log/slog"
)

// attrsKey - атрибуты, которые Ctx*-функции добавляют к каждой записи.
// HTTP-запрос кладет request_id и user_id, воркер outbox - event_id и event_type.
type attrsKey struct{}

// withAttr добавляет атрибут; повторный ключ заменяет прежнее значение
func withAttr(ctx context.Context, attr slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	next := make([]slog.Attr, 0, len(prev)+1)
	for _, a := range prev {
		if a.Key != attr.Key {
			next = append(next, a)
		}
	}
	return context.WithValue(ctx, attrsKey{}, append(next, attr))
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withAttr(ctx, slog.String("request_id", requestID))
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withAttr(ctx, slog.String("user_id", userID))
}

// WithEvent помечает записи, сделанные при обработке события outbox
func WithEvent(ctx context.Context, eventID, eventType string) context.Context {
	ctx = withAttr(ctx, slog.String("event_id", eventID))
	return withAttr(ctx, slog.String("event_type", eventType))
}

// FromContext возвращает логгер с атрибутами из ctx
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	if ctx == nil {
		return l
	}
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	if len(attrs) == 0 {
		return l
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.With(args...)
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

// CtxWithError пишет err в поле error; nil пишется как пустая строка
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	text := ""
	if err != nil {
		text = err.Error()
	}
	FromContext(ctx).Error(msg, append([]any{"error", text}, args...)...)
}
