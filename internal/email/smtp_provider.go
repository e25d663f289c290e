package email

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPProvider реализует Provider для SMTP через gomail
type SMTPProvider struct {
	config   Config
	dialer   *gomail.Dialer
	renderer TemplateRenderer
}

// NewSMTPProvider создает новый SMTP провайдер
func NewSMTPProvider(config Config, renderer TemplateRenderer) *SMTPProvider {
	return &SMTPProvider{
		config:   config,
		dialer:   gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword),
		renderer: renderer,
	}
}

// Send отправляет email сообщение
func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.dialer.DialAndSend(p.buildMessage(email)); err != nil {
		return fmt.Errorf("failed to send via SMTP: %w", err)
	}
	return nil
}

// SendTemplate отправляет email используя шаблон
func (p *SMTPProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	email, err := renderTemplate(p.renderer, to, subject, templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, email)
}

// Validate проверяет конфигурацию SMTP
func (p *SMTPProvider) Validate() error {
	if p.config.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.SMTPPort <= 0 || p.config.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.SMTPPort)
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// Close - соединение открывается на каждое письмо
func (p *SMTPProvider) Close() error {
	return nil
}

func (p *SMTPProvider) buildMessage(email *Email) *gomail.Message {
	from, fromName := email.From, email.FromName
	if from == "" {
		from, fromName = p.config.FromEmail, p.config.FromName
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", email.To...)
	if len(email.Cc) > 0 {
		m.SetHeader("Cc", email.Cc...)
	}
	if len(email.Bcc) > 0 {
		m.SetHeader("Bcc", email.Bcc...)
	}
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.Body != "":
		m.SetBody("text/plain", email.Body)
		m.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.Body)
	}

	for _, a := range email.Attachments {
		content := a.Content
		m.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}
