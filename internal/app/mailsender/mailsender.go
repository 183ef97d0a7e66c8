// Package mailsender собирает воркер, который забирает письма из очереди и отправляет их по SMTP.
package mailsender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/smtp"
	"github.com/magabrotheeeer/physoxy/internal/services/mailer"
)

// App держит соединение с брокером и отправителя писем.
type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *mailer.Sender
	logger *slog.Logger
}

// New подключается к RabbitMQ и объявляет очередь писем.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.mailsender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailExchange, rabbitmq.GetMailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: mailer.NewSender(transport, cfg.Branding.Name, logger),
		logger: logger,
	}, nil
}

// Run обрабатывает письма до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.MailQueue, a.sender.Handle)
	if err != nil {
		a.logger.Error("failed to start mail consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("mail sender shutting down gracefully")
	<-done

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
