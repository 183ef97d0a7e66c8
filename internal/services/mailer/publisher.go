package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/lib/rabbitmq"
)

// Publisher публикует письма в exchange mail.
type Publisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	brand    string
	magicTTL time.Duration
	log      *slog.Logger
}

// NewPublisher создает Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, brand string, magicTTL time.Duration, log *slog.Logger) *Publisher {
	return &Publisher{ch: ch, brand: brand, magicTTL: magicTTL, log: log}
}

// Publish ставит письмо в очередь.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	const op = "mailer.Publish"
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(ctx, p.ch, rabbitmq.MailExchange, rabbitmq.MailRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendVerification отправляет письмо со ссылкой подтверждения регистрации.
func (p *Publisher) SendVerification(ctx context.Context, to, name, link string) error {
	const op = "mailer.SendVerification"
	html, err := RenderVerification(p.brand, name, link, p.magicTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = p.Publish(ctx, Message{To: to, Subject: VerificationSubject, HTML: html}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Debug("verification mail queued", slog.String("op", op), slog.String("to", to))
	return nil
}
