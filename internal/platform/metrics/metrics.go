package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medication_reminders"

// Metrics agrupa los collectors del motor de recordatorios.
// Cada instancia tiene su propio registry para no chocar entre tests.
type Metrics struct {
	Registry *prometheus.Registry

	RemindersFired    prometheus.Counter
	NotificationsSent *prometheus.CounterVec
	TimersActive      prometheus.Gauge
	Resyncs           *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RemindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Local reminder timers that fired.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notification attempts by channel and outcome.",
		}, []string{"channel", "status"}),
		TimersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_timers_active",
			Help:      "Armed local reminder timers.",
		}),
		Resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_resyncs_total",
			Help:      "Full timer resynchronizations by trigger.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.RemindersFired,
		m.NotificationsSent,
		m.TimersActive,
		m.Resyncs,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Los helpers aceptan receptor nil para que los componentes funcionen sin métricas.

func (m *Metrics) ReminderFired() {
	if m == nil {
		return
	}
	m.RemindersFired.Inc()
}

func (m *Metrics) NotificationResult(channel, status string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) SetTimersActive(n int) {
	if m == nil {
		return
	}
	m.TimersActive.Set(float64(n))
}

func (m *Metrics) Resync(reason string) {
	if m == nil {
		return
	}
	m.Resyncs.WithLabelValues(reason).Inc()
}
