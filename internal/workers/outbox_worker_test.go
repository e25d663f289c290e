package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services"
	"estate_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeDispatcher пишет уведомление (эффект в БД), откладывает onCommit и возвращает заданную ошибку
type fakeDispatcher struct {
	userID   string
	err      error
	calls    int
	onCommit func(event *models.OutboxEvent)
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	d.calls++
	if d.userID != "" {
		n := &models.Notification{UserID: d.userID, Type: "test", Title: event.EventType}
		if err := db.Create(n).Error; err != nil {
			return err
		}
	}
	if d.onCommit != nil {
		services.OnCommit(ctx, func() { d.onCommit(event) })
	}
	return d.err
}

func newTestWorker(t *testing.T, dispatcher *fakeDispatcher) (*OutboxWorker, *gorm.DB, repositories.OutboxRepository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repositories.NewOutboxRepository()
	w := NewOutboxWorker(db, repo, dispatcher, OutboxConfig{
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  2,
		RetryDelay:   time.Minute,
	})
	return w, db, repo
}

func enqueue(t *testing.T, db *gorm.DB, repo repositories.OutboxRepository, eventType string) *models.OutboxEvent {
	t.Helper()
	event := &models.OutboxEvent{EventType: eventType, AggregateID: "agg-1", AvailableAt: time.Now().Add(-time.Second)}
	require.NoError(t, repo.Create(db, event))
	return event
}

func reload(t *testing.T, db *gorm.DB, id string) models.OutboxEvent {
	t.Helper()
	var event models.OutboxEvent
	require.NoError(t, db.First(&event, "id = ?", id).Error)
	return event
}

func TestOutboxWorker_ProcessesEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	w, db, repo := newTestWorker(t, dispatcher)
	event := enqueue(t, db, repo, "property.approved")

	n, err := w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, dispatcher.calls)

	stored := reload(t, db, event.ID)
	assert.Equal(t, models.OutboxStatusProcessed, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.NotNil(t, stored.ProcessedAt)

	// обработанное событие не берется повторно
	n, err = w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOutboxWorker_RetriesThenFails(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("smtp unavailable")}
	w, db, repo := newTestWorker(t, dispatcher)
	event := enqueue(t, db, repo, "inquiry.responded")

	_, err := w.ProcessOnce(context.Background())
	require.NoError(t, err)

	stored := reload(t, db, event.ID)
	assert.Equal(t, models.OutboxStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, "smtp unavailable", stored.LastError)
	assert.True(t, stored.AvailableAt.After(time.Now()), "повтор отложен")

	// до available_at событие не берется
	n, err := w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	w.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err = w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored = reload(t, db, event.ID)
	assert.Equal(t, models.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.Equal(t, 2, dispatcher.calls)
}

func TestOutboxWorker_FailedAttemptRollsBackItsWrites(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)

	dispatcher := &fakeDispatcher{userID: user.ID, err: errors.New("primary effect failed")}
	repo := repositories.NewOutboxRepository()
	w := NewOutboxWorker(db, repo, dispatcher, OutboxConfig{MaxAttempts: 3})
	enqueue(t, db, repo, "inquiry.created")

	_, err := w.ProcessOnce(context.Background())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)

	dispatcher.err = nil
	w.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = w.ProcessOnce(context.Background())
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOutboxWorker_CommitHooksRunOnlyAfterSuccess(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)

	var published []string
	var visible []int64
	dispatcher := &fakeDispatcher{userID: user.ID, err: errors.New("primary effect failed")}
	dispatcher.onCommit = func(event *models.OutboxEvent) {
		published = append(published, event.EventType)
		// к моменту выполнения строка уже зафиксирована
		var count int64
		require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
		visible = append(visible, count)
	}
	repo := repositories.NewOutboxRepository()
	w := NewOutboxWorker(db, repo, dispatcher, OutboxConfig{MaxAttempts: 3})
	enqueue(t, db, repo, "inquiry.created")

	// неудачная попытка: действие отброшено вместе с записями
	_, err := w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, published)

	dispatcher.err = nil
	w.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"inquiry.created"}, published)
	assert.Equal(t, []int64{1}, visible)

	// повторный проход ничего не публикует
	_, err = w.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, published, 1)
}

func TestOutboxWorker_StopsOnContextCancel(t *testing.T) {
	w, _, _ := newTestWorker(t, &fakeDispatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
