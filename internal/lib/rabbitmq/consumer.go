package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
)

// ErrPermanent помечает ошибки, после которых сообщение нет смысла возвращать в очередь.
var ErrPermanent = errors.New("permanent message failure")

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь,
// если только она не оборачивает ErrPermanent.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает чтение очереди queueName. Одновременно обрабатывается
// не больше prefetch сообщений; чтение прекращается при отмене ctx.
//
// Возвращенный канал закрывается, когда чтение остановлено и все начатые
// обработчики завершились. До этого канал AMQP закрывать нельзя.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return consume(ctx, log, delivery, handler), nil
}

func consume(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery, handler Handler) <-chan struct{} {
	done := make(chan struct{})
	sem := make(chan struct{}, prefetch)
	var wg sync.WaitGroup

	go func() {
		defer func() {
			wg.Wait()
			close(done)
		}()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					// не взятое в работу сообщение вернется брокеру
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer func() {
						<-sem
						wg.Done()
					}()
					process(ctx, log, d, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// process подтверждает, возвращает в очередь или отбрасывает одно сообщение.
func process(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrPermanent):
		log.Error("dropping message", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Error("failed to handle message", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
