package email

import (
	"context"
	"fmt"
	"strings"
)

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет готовое сообщение
	Send(ctx context.Context, email *Email) error

	// SendTemplate рендерит шаблон и отправляет письмо
	SendTemplate(ctx context.Context, to []string, subject string, templateName string, data TemplateData) error

	// Validate проверяет конфигурацию провайдера
	Validate() error

	// Close закрывает соединение с провайдером
	Close() error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
	LoadTemplates(dirPath string) error
}

// Config - общая конфигурация для всех провайдеров
type Config struct {
	Provider      string // smtp, mailjet, log
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	MailjetKey    string
	MailjetSecret string
	FromEmail     string
	FromName      string
	TemplatesDir  string
}

// NewProvider собирает провайдер по конфигурации. Пустой провайдер = log.
func NewProvider(cfg Config) (Provider, error) {
	renderer, err := NewDefaultTemplateManager(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	var provider Provider
	switch cfg.Provider {
	case "", "log":
		provider = NewLogProvider(cfg, renderer)
	case "smtp":
		provider = NewSMTPProvider(cfg, renderer)
	case "mailjet":
		provider = NewMailjetProvider(cfg, renderer)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}

	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return provider, nil
}

// renderTemplate - общая часть SendTemplate для всех провайдеров
func renderTemplate(renderer TemplateRenderer, to []string, subject, templateName string, data TemplateData) (*Email, error) {
	if renderer == nil {
		return nil, fmt.Errorf("template renderer is not configured")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("no recipients specified")
	}

	htmlBody, err := renderer.Render(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  subject,
		Body:     htmlToText(htmlBody),
		HTMLBody: htmlBody,
	}, nil
}

// htmlToText - грубая текстовая версия письма
func htmlToText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
