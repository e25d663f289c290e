package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"estate_backend/internal/models"
	"estate_backend/internal/push"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/testutil"
	"estate_backend/internal/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSender считает доставленные push-сообщения
type countingSender struct {
	mu   sync.Mutex
	sent []push.Message
}

func (s *countingSender) Send(_ context.Context, _ *models.PushSubscription, msg push.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *countingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// countingPublisher считает события websocket по пользователям
type countingPublisher struct {
	mu     sync.Mutex
	byUser map[string]int
}

func (p *countingPublisher) PublishToUser(userID string, _ string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.byUser == nil {
		p.byUser = map[string]int{}
	}
	p.byUser[userID]++
}

func (p *countingPublisher) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byUser[userID]
}

func TestEventDispatcher_PropertyApprovedQueuesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.PropertyService.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)
	_, err = env.svc.PropertyService.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)

	events := outboxEvents(t, env.db, services.EventPropertyApproved)
	require.Len(t, events, 1)
	require.NoError(t, env.svc.EventDispatcher.Dispatch(ctx, env.db, &events[0]))

	// уведомление создано сразу, письмо поставлено отдельным событием
	unread, err := env.svc.NotificationService.UnreadCount(ctx, env.db, env.agentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Empty(t, env.mailer.Sent())
	assert.Len(t, outboxEvents(t, env.db, services.EventPushBroadcast), 1)

	mails := outboxEvents(t, env.db, services.EventEmailSend)
	require.Len(t, mails, 1)
	assert.Equal(t, created.ID, mails[0].AggregateID)
	require.NoError(t, env.svc.EventDispatcher.Dispatch(ctx, env.db, &mails[0]))

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"agent@estate.test"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "Sea View Villa")
}

func TestEventDispatcher_SubmittedNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.PropertyService.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)

	events := outboxEvents(t, env.db, services.EventPropertySubmitted)
	require.Len(t, events, 1)
	require.NoError(t, env.svc.EventDispatcher.Dispatch(ctx, env.db, &events[0]))

	list, err := env.svc.NotificationService.List(ctx, env.db, env.adminID, &dto.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, repositories.NotificationTypePropertySubmitted, list.Data[0].Type)

	var data map[string]string
	require.NoError(t, json.Unmarshal(list.Data[0].Data, &data))
	assert.NotEmpty(t, data["property_id"])
}

func TestEventDispatcher_MailFailureKeepsResponse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := testutil.CreateProperty(t, env.db, env.agentID, "Loft", models.PropertyStatusApproved)

	inquiry, err := env.svc.InquiryService.Create(ctx, env.db, services.Actor{}, &dto.CreateInquiryRequest{
		PropertyID: property.ID, Name: "Guest", Email: "guest@estate.test", Message: "Hi",
	})
	require.NoError(t, err)

	answer := "Thanks, call me"
	_, err = env.svc.InquiryService.Respond(ctx, env.db, env.agent, inquiry.ID, &dto.RespondRequest{ResponseMessage: &answer})
	require.NoError(t, err)

	events := outboxEvents(t, env.db, services.EventInquiryResponded)
	require.Len(t, events, 1)
	require.NoError(t, env.svc.EventDispatcher.Dispatch(ctx, env.db, &events[0]))

	mails := outboxEvents(t, env.db, services.EventEmailSend)
	require.Len(t, mails, 1)
	dispatcher := services.NewEventDispatcher(repositories.NewUserRepository(), repositories.NewOutboxRepository(),
		env.svc.NotificationService, nil, failingMailer{}, "")
	assert.Error(t, dispatcher.Dispatch(ctx, env.db, &mails[0]))

	// ответ сохранен независимо от почты
	stored, err := env.svc.InquiryService.Get(ctx, env.db, env.admin, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusResponded, stored.Status)
	assert.Equal(t, answer, stored.ResponseMessage)
}

func TestEventDispatcher_MailRetriesDoNotRepeatOtherEffects(t *testing.T) {
	sender := &countingSender{}
	publisher := &countingPublisher{}
	env := newTestEnv(t, func(deps *services.Dependencies) {
		deps.Mailer = failingMailer{}
		deps.PushSender = sender
		deps.Realtime = publisher
	})
	ctx := context.Background()
	require.NoError(t, env.db.Create(&models.PushSubscription{Kind: models.PushKindWeb, Endpoint: "https://push.example/sub-1"}).Error)

	created, err := env.svc.PropertyService.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)
	_, err = env.svc.PropertyService.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)

	worker := workers.NewOutboxWorker(env.db, env.svc.OutboxRepository, env.svc.EventDispatcher, workers.OutboxConfig{
		PollInterval: time.Millisecond,
		BatchSize:    50,
		MaxAttempts:  3,
		RetryDelay:   time.Millisecond,
	})

	// доменные события, затем эффекты, затем повторы письма
	for i := 0; i < 6; i++ {
		_, err := worker.ProcessOnce(ctx)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	mails := outboxEvents(t, env.db, services.EventEmailSend)
	require.Len(t, mails, 1)
	assert.Equal(t, models.OutboxStatusFailed, mails[0].Status)
	assert.Equal(t, 3, mails[0].Attempts)

	// push на submitted и на approved, по одному разу
	assert.Equal(t, 2, sender.count())
	for _, e := range outboxEvents(t, env.db, services.EventPushBroadcast) {
		assert.Equal(t, models.OutboxStatusProcessed, e.Status)
	}

	unread, err := env.svc.NotificationService.UnreadCount(ctx, env.db, env.agentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Equal(t, 1, publisher.count(env.agentID))
	assert.Equal(t, 1, publisher.count(env.adminID))
}

func TestEventDispatcher_UnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.EventDispatcher.Dispatch(context.Background(), env.db, &models.OutboxEvent{EventType: "unknown"})
	assert.Error(t, err)
}
