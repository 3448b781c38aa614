// Package metrics содержит prometheus-счётчики threads-сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "threads"

// Metrics: набор счётчиков операций над деревьями.
// Нулевой указатель допустим: методы становятся no-op.
type Metrics struct {
	CommentsCreated *prometheus.CounterVec
	Votes           *prometheus.CounterVec
	MissedTargets   *prometheus.CounterVec
	Reports         prometheus.Counter
}

// New создаёт счётчики и регистрирует их в reg (nil: без регистрации).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Created comments by kind (root or reply).",
		}, []string{"kind"}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Applied votes by direction.",
		}, []string{"direction"}),
		MissedTargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missed_targets_total",
			Help:      "Votes or replies whose target comment was not found.",
		}, []string{"op"}),
		Reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Comment reports received.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.CommentsCreated, m.Votes, m.MissedTargets, m.Reports)
	}

	return m
}

func (m *Metrics) CommentCreated(reply bool) {
	if m == nil {
		return
	}

	kind := "root"
	if reply {
		kind = "reply"
	}
	m.CommentsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) Voted(direction string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(direction).Inc()
}

func (m *Metrics) Missed(op string) {
	if m == nil {
		return
	}
	m.MissedTargets.WithLabelValues(op).Inc()
}

func (m *Metrics) Reported() {
	if m == nil {
		return
	}
	m.Reports.Inc()
}
