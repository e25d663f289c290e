package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"estate_backend/internal/logger"
)

// LogProvider не отправляет письма, а пишет их в лог. Используется в разработке и тестах.
type LogProvider struct {
	config   Config
	renderer TemplateRenderer

	mu   sync.Mutex
	sent []Email
}

func NewLogProvider(config Config, renderer TemplateRenderer) *LogProvider {
	return &LogProvider{config: config, renderer: renderer}
}

func (p *LogProvider) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()

	logger.FromContext(ctx).Info("Email (log provider)",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}

func (p *LogProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	email, err := renderTemplate(p.renderer, to, subject, templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, email)
}

// Sent возвращает копию отправленных писем
func (p *LogProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *LogProvider) Validate() error {
	return nil
}

func (p *LogProvider) Close() error {
	return nil
}
