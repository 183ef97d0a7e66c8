// Package paymentprovider имитирует внешний платежный шлюз: каждый вызов
// занимает фиксированное время и всегда завершается успешно.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
)

// ErrInvalidAmount — отрицательная сумма в запросе.
var ErrInvalidAmount = errors.New("amount must not be negative")

// Client — имитация клиента платежного шлюза.
type Client struct {
	latency time.Duration
	clock   clock.Clock
}

// NewClient создает клиент с задержкой latency на каждый вызов.
func NewClient(latency time.Duration, clk clock.Clock) *Client {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Client{
		latency: latency,
		clock:   clk,
	}
}

// Charge списывает req.Amount.
func (c *Client) Charge(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	return c.do(ctx, OperationCharge, req)
}

// Refund возвращает req.Amount пользователю.
func (c *Client) Refund(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	return c.do(ctx, OperationRefund, req)
}

func (c *Client) do(ctx context.Context, operation Operation, req PaymentRequest) (*PaymentResponse, error) {
	op := "paymentprovider." + string(operation)
	if req.Amount < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	return &PaymentResponse{
		ID:        uuid.NewString(),
		Operation: operation,
		Status:    StatusSucceeded,
		Amount:    req.Amount,
		CreatedAt: c.clock.Now(),
	}, nil
}
