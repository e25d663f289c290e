package email

import (
	"context"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

// MailjetProvider отправляет письма через Mailjet Send API v3.1
type MailjetProvider struct {
	config   Config
	client   *mailjet.Client
	renderer TemplateRenderer
}

func NewMailjetProvider(config Config, renderer TemplateRenderer) *MailjetProvider {
	return &MailjetProvider{
		config:   config,
		client:   mailjet.NewMailjetClient(config.MailjetKey, config.MailjetSecret),
		renderer: renderer,
	}
}

func (p *MailjetProvider) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from, fromName := email.From, email.FromName
	if from == "" {
		from, fromName = p.config.FromEmail, p.config.FromName
	}

	to := make(mailjet.RecipientsV31, 0, len(email.To))
	for _, addr := range email.To {
		to = append(to, mailjet.RecipientV31{Email: addr})
	}

	info := mailjet.InfoMessagesV31{
		From:     &mailjet.RecipientV31{Email: from, Name: fromName},
		To:       &to,
		Subject:  email.Subject,
		TextPart: email.Body,
		HTMLPart: email.HTMLBody,
	}
	if len(email.Cc) > 0 {
		cc := make(mailjet.RecipientsV31, 0, len(email.Cc))
		for _, addr := range email.Cc {
			cc = append(cc, mailjet.RecipientV31{Email: addr})
		}
		info.Cc = &cc
	}

	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{info}}
	if _, err := p.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("failed to send via mailjet: %w", err)
	}
	return nil
}

func (p *MailjetProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	email, err := renderTemplate(p.renderer, to, subject, templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, email)
}

func (p *MailjetProvider) Validate() error {
	if p.config.MailjetKey == "" || p.config.MailjetSecret == "" {
		return fmt.Errorf("mailjet api key and secret are required")
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (p *MailjetProvider) Close() error {
	return nil
}
