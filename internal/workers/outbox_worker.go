package workers

import (
	"context"
	"fmt"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services"

	"gorm.io/gorm"
)

const workerName = "outbox"

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// RetryDelay умножается на номер попытки
	RetryDelay time.Duration
}

// OutboxWorker выполняет побочные эффекты событий, записанных сервисами в outbox
type OutboxWorker struct {
	db         *gorm.DB
	repo       repositories.OutboxRepository
	dispatcher services.EventDispatcher
	cfg        OutboxConfig
	now        func() time.Time
}

func NewOutboxWorker(db *gorm.DB, repo repositories.OutboxRepository, dispatcher services.EventDispatcher, cfg OutboxConfig) *OutboxWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = cfg.PollInterval
	}
	return &OutboxWorker{
		db:         db,
		repo:       repo,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Start запускает опрос outbox в фоне до отмены ctx
func (w *OutboxWorker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run - цикл опроса; блокирует до отмены ctx
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	logger.Info("outbox worker started", "interval", w.cfg.PollInterval.String(), "batch_size", w.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			// пачка за пачкой, пока есть готовые события
			for {
				n, err := w.ProcessOnce(ctx)
				if err != nil {
					logger.WorkerLog(workerName, "process", err)
					break
				}
				if n < w.cfg.BatchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// ProcessOnce обрабатывает одну пачку готовых событий и возвращает их количество.
// Каждое событие выполняется в savepoint: записи в БД, сделанные неудачной попыткой, откатываются.
// Отложенные через services.OnCommit действия успешных событий выполняются после COMMIT пачки.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) (int, error) {
	count := 0
	var committed []*services.CommitHooks

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events, err := w.repo.ClaimDue(tx, w.now(), w.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to claim outbox events: %w", err)
		}
		count = len(events)

		for i := range events {
			hooks, err := w.handle(ctx, tx, &events[i])
			if err != nil {
				return err
			}
			if hooks != nil {
				committed = append(committed, hooks)
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	for _, hooks := range committed {
		hooks.Run()
	}
	return count, nil
}

// handle возвращает отложенные действия события, если dispatch прошел успешно
func (w *OutboxWorker) handle(ctx context.Context, tx *gorm.DB, event *models.OutboxEvent) (*services.CommitHooks, error) {
	ectx, hooks := services.WithCommitHooks(logger.WithEvent(ctx, event.ID, event.EventType))
	dispatchErr := tx.Transaction(func(etx *gorm.DB) error {
		return w.dispatcher.Dispatch(ectx, etx, event)
	})

	if dispatchErr == nil {
		logger.WorkerLog(workerName, event.EventType, nil, "event_id", event.ID)
		return hooks, w.repo.MarkProcessed(tx, event.ID, w.now())
	}

	attempts := event.Attempts + 1
	if attempts >= w.cfg.MaxAttempts {
		logger.WorkerLog(workerName, event.EventType, dispatchErr, "event_id", event.ID, "attempts", attempts, "final", true)
		return nil, w.repo.MarkFailed(tx, event.ID, attempts, dispatchErr.Error())
	}

	next := w.now().Add(time.Duration(attempts) * w.cfg.RetryDelay)
	logger.WorkerLog(workerName, event.EventType, dispatchErr, "event_id", event.ID, "attempts", attempts, "retry_at", next)
	return nil, w.repo.MarkRetry(tx, event.ID, attempts, dispatchErr.Error(), next)
}
