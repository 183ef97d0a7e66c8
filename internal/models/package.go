package models

// Pricing — цены пакета за месяц и за год.
type Pricing struct {
	Monthly float64 `json:"monthly" validate:"gte=0"`
	Yearly  float64 `json:"yearly" validate:"gte=0"`
}

// Package — тарифный пакет, на который ссылаются подписки и закрытые материалы.
type Package struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Pricing     Pricing `json:"pricing"`
}

// Price возвращает цену пакета для типа оплаты.
func (p *Package) Price(billing BillingType) float64 {
	if billing == Yearly {
		return p.Pricing.Yearly
	}
	return p.Pricing.Monthly
}

// Subscriber — пользователь с действующей подпиской для админского списка.
type Subscriber struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PackageName  string       `json:"packageName"`
	Subscription Subscription `json:"subscription"`
}
