package verify

import (
	"github.com/prometheus/client_golang/prometheus"

	"smpverify/model"
)

// Surface labels which entry point asked for a verdict.
const (
	SurfaceChat = "chat"
	SurfaceWeb  = "web"
)

// Metrics counts verdicts and degraded collections. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	verdicts *prometheus.CounterVec
	degrades prometheus.Counter
}

// NewMetrics registers the verification collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smpverify",
			Name:      "verdicts_total",
			Help:      "Verification verdicts by surface and deciding signal.",
		}, []string{"surface", "source"}),
		degrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpverify",
			Name:      "degraded_collections_total",
			Help:      "Evidence collections where the membership source could not fully answer.",
		}),
	}
	reg.MustRegister(m.verdicts, m.degrades)
	return m
}

func (m *Metrics) verdict(surface string, source model.Source) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(surface, string(source)).Inc()
}

func (m *Metrics) degraded() {
	if m == nil {
		return
	}
	m.degrades.Inc()
}
