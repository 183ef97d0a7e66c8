package models

import (
	"fmt"
	"time"
)

// BillingType — период оплаты подписки.
type BillingType string

const (
	Monthly BillingType = "monthly"
	Yearly  BillingType = "yearly"
)

// Месяц биллинга всегда равен 30 дням, год — 12 таким месяцам.
const (
	BillingMonth = 30 * 24 * time.Hour
	BillingYear  = 12 * BillingMonth
)

// Valid сообщает, что тип оплаты известен.
func (b BillingType) Valid() bool {
	return b == Monthly || b == Yearly
}

// Period возвращает длительность оплаченного периода.
func (b BillingType) Period() time.Duration {
	if b == Yearly {
		return BillingYear
	}
	return BillingMonth
}

// ParseBillingType разбирает строку в BillingType.
func ParseBillingType(s string) (BillingType, error) {
	b := BillingType(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown billing type %q", s)
	}
	return b, nil
}

// Subscription — подписка, встроенная в пользователя.
//
// EndsAt всегда равен StartsAt плюс Period() для Type; Amount — цена пакета
// для Type на момент покупки и позже не пересчитывается.
type Subscription struct {
	PlanID   string      `json:"planId"`
	Type     BillingType `json:"type"`
	Amount   float64     `json:"amount"`
	StartsAt time.Time   `json:"startsAt"`
	EndsAt   time.Time   `json:"endsAt"`
}

// NewSubscription создает подписку на пакет planID, начинающуюся в момент now.
func NewSubscription(planID string, billing BillingType, amount float64, now time.Time) Subscription {
	return Subscription{
		PlanID:   planID,
		Type:     billing,
		Amount:   amount,
		StartsAt: now,
		EndsAt:   now.Add(billing.Period()),
	}
}

// Active сообщает, что подписка действует в момент now (EndsAt строго позже now).
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.EndsAt.After(now)
}
