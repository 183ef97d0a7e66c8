package subscription

import (
	"math"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Quote — расчет стоимости смены тарифа.
type Quote struct {
	// MoneyLeft — зачет за неиспользованные целые месяцы годовой подписки.
	MoneyLeft float64
	// TargetPrice — цена нового пакета для выбранного типа оплаты.
	TargetPrice float64
	// AmountDue — к оплате; отрицательное значение означает возврат.
	AmountDue float64
}

// Refund сообщает, что пользователю полагается возврат.
func (q Quote) Refund() bool {
	return q.AmountDue < 0
}

// MoneyLeft считает зачет за текущую подписку.
//
// Зачет есть только у действующей годовой подписки: amount/12 за каждый целый
// оставшийся 30-дневный месяц. Неполный месяц отбрасывается, месячная подписка
// и истекшая подписка зачета не дают.
func MoneyLeft(current *models.Subscription, now time.Time) float64 {
	if current == nil || !current.Active(now) || current.Type != models.Yearly {
		return 0
	}
	monthsLeft := math.Floor(float64(current.EndsAt.Sub(now)) / float64(models.BillingMonth))
	return current.Amount / 12 * monthsLeft
}

// Prorate рассчитывает переход с current на target с оплатой billing.
func Prorate(current *models.Subscription, target *models.Package, billing models.BillingType, now time.Time) Quote {
	left := MoneyLeft(current, now)
	price := target.Price(billing)
	return Quote{
		MoneyLeft:   left,
		TargetPrice: price,
		AmountDue:   price - left,
	}
}
