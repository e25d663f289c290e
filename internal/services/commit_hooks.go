package services

import (
	"context"
	"sync"

	"estate_backend/pkg/contextkeys"
)

// CommitHooks копит действия, которые выполняются только после COMMIT
// (например, отправка уведомления в websocket)
type CommitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithCommitHooks возвращает контекст, в котором OnCommit откладывает действия в hooks
func WithCommitHooks(ctx context.Context) (context.Context, *CommitHooks) {
	hooks := &CommitHooks{}
	return context.WithValue(ctx, contextkeys.CommitHooksKey, hooks), hooks
}

// OnCommit откладывает fn, если в ctx есть CommitHooks, иначе выполняет сразу
func OnCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(contextkeys.CommitHooksKey).(*CommitHooks)
	if !ok || hooks == nil {
		fn()
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}

// Run выполняет накопленные действия один раз
func (h *CommitHooks) Run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
