// Package metrics exposes Prometheus counters for the verification and
// session token lifecycle.
package metrics

import (
	"net/http"

	"github.com/go-label-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "label"

type Metrics struct {
	registry        *prometheus.Registry
	sessionsCreated *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	sessionsSwept   prometheus.Counter
	tokensIssued    *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
}

// New builds a private registry so tests can create as many instances as they need.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_sessions_created_total",
			Help:      "Verification sessions created, by delivery channel.",
		}, []string{"channel"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "Verification attempts, by outcome.",
		}, []string{"outcome"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_sessions_swept_total",
			Help:      "Expired verification sessions removed by the sweeper.",
		}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_issued_total",
			Help:      "Session tokens issued, by role.",
		}, []string{"role"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_token_rejections_total",
			Help:      "Requests rejected by session token validation, by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsCreated,
		m.verifications,
		m.sessionsSwept,
		m.tokensIssued,
		m.tokenRejections,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionCreated(ch domain.Channel) {
	label := string(ch)
	if label == "" {
		label = "unknown"
	}
	m.sessionsCreated.WithLabelValues(label).Inc()
}

func (m *Metrics) VerificationOutcome(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionsSwept(n int) {
	m.sessionsSwept.Add(float64(n))
}

func (m *Metrics) TokenIssued(role domain.Role) {
	m.tokensIssued.WithLabelValues(string(role)).Inc()
}

func (m *Metrics) TokenRejected(reason string) {
	m.tokenRejections.WithLabelValues(reason).Inc()
}
