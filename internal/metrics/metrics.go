// Package metrics регистрирует счетчики Prometheus для регистраций, сессий и смены тарифа.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для меток outcome.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeThrottled = "throttled"
	OutcomeError     = "error"
)

// Recorder — метрики, которые пишут сервисы.
type Recorder interface {
	IncRegistration(outcome string)
	IncVerification(outcome string)
	IncLogin(outcome string)
	IncRefresh(outcome string)
	IncPlanChange(billing, operation string)
	ObservePayment(operation string, amount float64)
}

// Prometheus — реализация Recorder поверх client_golang.
type Prometheus struct {
	registrations *prometheus.CounterVec
	verifications *prometheus.CounterVec
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	planChanges   *prometheus.CounterVec
	payments      *prometheus.HistogramVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	outcome := []string{"outcome"}

	return &Prometheus{
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physoxy_registrations_total",
			Help: "Registration attempts by outcome",
		}, outcome),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physoxy_verifications_total",
			Help: "Magic link verifications by outcome",
		}, outcome),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physoxy_logins_total",
			Help: "Login attempts by outcome",
		}, outcome),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physoxy_refreshes_total",
			Help: "Access token refreshes by outcome",
		}, outcome),
		planChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physoxy_plan_changes_total",
			Help: "Committed plan changes by billing type and payment operation",
		}, []string{"billing", "operation"}),
		payments: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "physoxy_payment_amount",
			Help:    "Simulated payment amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 5),
		}, []string{"operation"}),
	}
}

func (m *Prometheus) IncRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) IncVerification(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) IncLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) IncRefresh(outcome string) {
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) IncPlanChange(billing, operation string) {
	m.planChanges.WithLabelValues(billing, operation).Inc()
}

func (m *Prometheus) ObservePayment(operation string, amount float64) {
	m.payments.WithLabelValues(operation).Observe(amount)
}

// Nop ничего не записывает.
type Nop struct{}

func (Nop) IncRegistration(string) {}
func (Nop) IncVerification(string) {}
func (Nop) IncLogin(string) {}
func (Nop) IncRefresh(string) {}
func (Nop) IncPlanChange(string, string) {}
func (Nop) ObservePayment(string, float64) {}
