package paymentprovider

import "time"

// Status — итог операции в платежном шлюзе.
type Status string

const (
	StatusSucceeded Status = "succeeded"
)

// Operation — вид операции: списание или возврат.
type Operation string

const (
	OperationCharge Operation = "charge"
	OperationRefund Operation = "refund"
)

// PaymentRequest — запрос на списание или возврат суммы пользователю.
type PaymentRequest struct {
	UserID      string
	Amount      float64
	Description string
}

// PaymentResponse — ответ шлюза.
type PaymentResponse struct {
	ID        string
	Operation Operation
	Status    Status
	Amount    float64
	CreatedAt time.Time
}
