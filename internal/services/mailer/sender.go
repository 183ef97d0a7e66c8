package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/physoxy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/smtp"
)

// ErrBadMessage — сообщение из очереди не удалось разобрать. Такое сообщение
// отбрасывается, а не возвращается в очередь.
var ErrBadMessage = fmt.Errorf("bad mail message: %w", rabbitmq.ErrPermanent)

// Sender доставляет письма из очереди по SMTP.
type Sender struct {
	transport smtp.TransportInterface
	brand     string
	log       *slog.Logger
}

// NewSender создает Sender. brand используется как отображаемое имя отправителя.
func NewSender(transport smtp.TransportInterface, brand string, log *slog.Logger) *Sender {
	return &Sender{transport: transport, brand: brand, log: log}
}

// Handle разбирает тело сообщения RabbitMQ и отправляет письмо.
func (s *Sender) Handle(ctx context.Context, body []byte) error {
	const op = "mailer.Handle"
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrBadMessage, err)
	}
	if msg.To == "" {
		return fmt.Errorf("%s: %w: empty recipient", op, ErrBadMessage)
	}
	return s.Send(ctx, msg)
}

// Send отправляет одно письмо.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	const op = "mailer.Send"
	log := s.log.With(slog.String("op", op), slog.String("to", msg.To))

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Debug("smtp client close", sl.Err(closeErr))
		}
	}()

	from := s.transport.Sender()
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: rcpt: %w", op, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = w.Write([]byte(s.compose(from, msg))); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		log.Warn("smtp quit failed", sl.Err(err))
	}

	log.Info("mail sent", slog.String("subject", msg.Subject))
	return nil
}

func (s *Sender) compose(from string, msg Message) string {
	return strings.Join([]string{
		fmt.Sprintf("From: %q <%s>", s.brand, from),
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		msg.HTML,
	}, "\r\n")
}
