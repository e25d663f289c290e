package services

import (
	"context"
	"fmt"
	"strings"

	"estate_backend/internal/email"
	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/push"
	"estate_backend/internal/repositories"

	"gorm.io/gorm"
)

// EventDispatcher выполняет побочные эффекты события outbox.
// Доменные события меняют только БД: создают уведомления и ставят в outbox
// события-эффекты (email.send, push.broadcast). Событие-эффект делает один внешний вызов.
// Ошибка означает, что событие нужно повторить; записи неудачной попытки откатываются.
type EventDispatcher interface {
	Dispatch(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error
}

type eventHandler func(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error

type eventDispatcher struct {
	userRepo      repositories.UserRepository
	outboxRepo    repositories.OutboxRepository
	notifications NotificationService
	push          PushService
	mailer        email.Provider
	frontendURL   string
	handlers      map[string]eventHandler
}

func NewEventDispatcher(
	userRepo repositories.UserRepository,
	outboxRepo repositories.OutboxRepository,
	notifications NotificationService,
	pushService PushService,
	mailer email.Provider,
	frontendURL string,
) EventDispatcher {
	d := &eventDispatcher{
		userRepo:      userRepo,
		outboxRepo:    outboxRepo,
		notifications: notifications,
		push:          pushService,
		mailer:        mailer,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
	}
	d.handlers = map[string]eventHandler{
		EventPropertySubmitted:     d.onPropertySubmitted,
		EventPropertyApproved:      d.onPropertyApproved,
		EventBlogPublished:         d.onBlogPublished,
		EventInquiryCreated:        d.onInquiryCreated,
		EventInquiryResponded:      d.onInquiryResponded,
		EventConsultationCreated:   d.onConsultationCreated,
		EventConsultationResponded: d.onConsultationResponded,
		EventUserRegistered:        d.onUserRegistered,

		EventEmailSend:     d.onEmailSend,
		EventPushBroadcast: d.onPushBroadcast,
	}
	return d
}

func (d *eventDispatcher) Dispatch(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	handler, ok := d.handlers[event.EventType]
	if !ok {
		return fmt.Errorf("no handler for event type %q", event.EventType)
	}
	return handler(ctx, db, event)
}

func (d *eventDispatcher) link(path string) string {
	if d.frontendURL == "" {
		return ""
	}
	return d.frontendURL + path
}

// ============================================
// Постановка эффектов
// ============================================

func (d *eventDispatcher) sendEmail(db *gorm.DB, parent *models.OutboxEvent, msg EmailEvent) error {
	return enqueueEvent(db, d.outboxRepo, EventEmailSend, parent.AggregateID, msg)
}

// broadcast ставит рассылку, только если push подключен
func (d *eventDispatcher) broadcast(db *gorm.DB, parent *models.OutboxEvent, msg push.Message) error {
	if d.push == nil {
		return nil
	}
	return enqueueEvent(db, d.outboxRepo, EventPushBroadcast, parent.AggregateID, msg)
}

// ============================================
// Доменные события
// ============================================

// property.submitted: уведомления администраторам и push
func (d *eventDispatcher) onPropertySubmitted(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var p PropertyEvent
	if err := decodePayload(event, &p); err != nil {
		return err
	}

	message := fmt.Sprintf("New property %q is waiting for review", p.Title)
	if p.AgentName != "" {
		message = fmt.Sprintf("%s submitted %q for review", p.AgentName, p.Title)
	}
	if _, err := d.notifications.NotifyAdmins(ctx, db, repositories.NotificationTypePropertySubmitted,
		"Property awaiting approval", message, map[string]string{"property_id": p.PropertyID, "slug": p.Slug}); err != nil {
		return err
	}

	return d.broadcast(db, event, push.Message{
		Title: "New property submitted",
		Body:  p.Title,
		URL:   d.link("/admin/properties/pending"),
		Data:  map[string]string{"property_id": p.PropertyID},
	})
}

// property.approved: уведомление и письмо владельцу, push подписчикам
func (d *eventDispatcher) onPropertyApproved(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var p PropertyEvent
	if err := decodePayload(event, &p); err != nil {
		return err
	}

	owner, err := d.userRepo.FindByID(db, p.AgentID)
	if err != nil {
		return fmt.Errorf("failed to load property owner: %w", err)
	}

	if _, err := d.notifications.Notify(ctx, db, owner.ID, repositories.NotificationTypePropertyApproved,
		"Property approved", fmt.Sprintf("Your property %q is now live", p.Title),
		map[string]string{"property_id": p.PropertyID, "slug": p.Slug}); err != nil {
		return err
	}

	if err := d.broadcast(db, event, push.Message{
		Title: "New property listed",
		Body:  p.Title,
		URL:   d.link("/properties/" + p.Slug),
		Data:  map[string]string{"property_id": p.PropertyID},
	}); err != nil {
		return err
	}

	return d.sendEmail(db, event, EmailEvent{
		To:       []string{owner.Email},
		Subject:  "Your property has been approved",
		Template: email.TemplatePropertyApproved,
		Data: map[string]interface{}{
			"Name":  owner.Name,
			"Title": p.Title,
			"URL":   d.link("/properties/" + p.Slug),
		},
	})
}

// blog.published: уведомление и письмо автору, push подписчикам
func (d *eventDispatcher) onBlogPublished(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var b BlogEvent
	if err := decodePayload(event, &b); err != nil {
		return err
	}

	author, err := d.userRepo.FindByID(db, b.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to load post author: %w", err)
	}

	if _, err := d.notifications.Notify(ctx, db, author.ID, repositories.NotificationTypeBlogPostPublished,
		"Blog post published", fmt.Sprintf("Your post %q has been published", b.Title),
		map[string]string{"post_id": b.PostID, "slug": b.Slug}); err != nil {
		return err
	}

	if err := d.broadcast(db, event, push.Message{
		Title: "New on the blog",
		Body:  b.Title,
		URL:   d.link("/blog/" + b.Slug),
		Data:  map[string]string{"post_id": b.PostID},
	}); err != nil {
		return err
	}

	return d.sendEmail(db, event, EmailEvent{
		To:       []string{author.Email},
		Subject:  "Your blog post is live",
		Template: email.TemplateBlogPublished,
		Data: map[string]interface{}{
			"Name":  author.Name,
			"Title": b.Title,
			"URL":   d.link("/blog/" + b.Slug),
		},
	})
}

// inquiry.created: уведомление агенту объекта, без объекта - администраторам
func (d *eventDispatcher) onInquiryCreated(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var r RequestEvent
	if err := decodePayload(event, &r); err != nil {
		return err
	}

	title := "New inquiry"
	message := fmt.Sprintf("%s sent an inquiry", r.Name)
	if r.PropertyTitle != "" {
		message = fmt.Sprintf("%s is interested in %q", r.Name, r.PropertyTitle)
	}
	data := map[string]string{"inquiry_id": r.RequestID, "property_id": r.PropertyID}

	if r.AgentID != "" {
		_, err := d.notifications.Notify(ctx, db, r.AgentID, repositories.NotificationTypeNewInquiry, title, message, data)
		return err
	}
	_, err := d.notifications.NotifyAdmins(ctx, db, repositories.NotificationTypeNewInquiry, title, message, data)
	return err
}

// inquiry.responded: уведомление (если автор зарегистрирован) и письмо автору заявки
func (d *eventDispatcher) onInquiryResponded(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var r RequestEvent
	if err := decodePayload(event, &r); err != nil {
		return err
	}

	if r.UserID != "" {
		if _, err := d.notifications.Notify(ctx, db, r.UserID, repositories.NotificationTypeInquiryResponded,
			"Your inquiry was answered", r.ResponseMessage, map[string]string{"inquiry_id": r.RequestID}); err != nil {
			return err
		}
	}

	subject := "Re: your inquiry"
	if r.Subject != "" {
		subject = "Re: " + r.Subject
	}
	return d.sendEmail(db, event, EmailEvent{
		To:       []string{r.Email},
		Subject:  subject,
		Template: email.TemplateInquiryResponded,
		Data: map[string]interface{}{
			"Name":     r.Name,
			"Subject":  r.Subject,
			"Response": r.ResponseMessage,
		},
	})
}

func (d *eventDispatcher) onConsultationCreated(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var r RequestEvent
	if err := decodePayload(event, &r); err != nil {
		return err
	}
	_, err := d.notifications.NotifyAdmins(ctx, db, repositories.NotificationTypeNewConsultation,
		"New consultation request", fmt.Sprintf("%s requested a %s consultation", r.Name, r.ServiceType),
		map[string]string{"consultation_id": r.RequestID})
	return err
}

func (d *eventDispatcher) onConsultationResponded(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var r RequestEvent
	if err := decodePayload(event, &r); err != nil {
		return err
	}
	return d.sendEmail(db, event, EmailEvent{
		To:       []string{r.Email},
		Subject:  "Your consultation request",
		Template: email.TemplateConsultationResponded,
		Data: map[string]interface{}{
			"Name":        r.Name,
			"ServiceType": r.ServiceType,
			"Response":    r.ResponseMessage,
		},
	})
}

func (d *eventDispatcher) onUserRegistered(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var u UserEvent
	if err := decodePayload(event, &u); err != nil {
		return err
	}
	return d.sendEmail(db, event, EmailEvent{
		To:       []string{u.Email},
		Subject:  "Welcome",
		Template: email.TemplateWelcome,
		Data:     map[string]interface{}{"Name": u.Name},
	})
}

// ============================================
// События-эффекты
// ============================================

func (d *eventDispatcher) onEmailSend(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	var msg EmailEvent
	if err := decodePayload(event, &msg); err != nil {
		return err
	}
	err := d.mailer.SendTemplate(ctx, msg.To, msg.Subject, msg.Template, email.TemplateData(msg.Data))
	logger.SideEffectLog("email", msg.Template, err, "event_id", event.ID, "attempt", event.Attempts+1)
	return err
}

// push.broadcast: сбой доставки отдельной подписке не повторяется, только ошибка чтения подписок
func (d *eventDispatcher) onPushBroadcast(ctx context.Context, db *gorm.DB, event *models.OutboxEvent) error {
	if d.push == nil {
		return nil
	}
	var msg push.Message
	if err := decodePayload(event, &msg); err != nil {
		return err
	}
	_, err := d.push.Broadcast(ctx, db, msg)
	logger.SideEffectLog("push", msg.Title, err, "event_id", event.ID)
	return err
}
