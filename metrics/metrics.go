// Package metrics exposes auth activity as prometheus series.
package metrics

import (
	"context"

	auth "github.com/goliatone/go-userauth"
	"github.com/goliatone/go-userauth/activitymap"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "auth"

// ActivityMetrics counts login and refresh outcomes
type ActivityMetrics struct {
	events    *prometheus.CounterVec
	lastEvent *prometheus.GaugeVec
}

// NewActivityMetrics registers the collectors on reg. A nil reg uses the
// default registerer.
func NewActivityMetrics(reg prometheus.Registerer) (*ActivityMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &ActivityMetrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_events_total",
				Help:      "Total number of auth activity events.",
			},
			[]string{"verb", "outcome", "reason"},
		),
		lastEvent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "activity_last_event_timestamp_seconds",
				Help:      "Unix time of the last auth activity event.",
			},
			[]string{"verb", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.events, m.lastEvent} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Observe records one normalized event
func (m *ActivityMetrics) Observe(n activitymap.Normalized) {
	reason, _ := n.Metadata[activitymap.MetadataKeyReason].(string)
	m.events.WithLabelValues(n.Verb, n.Outcome, reason).Inc()
	m.lastEvent.WithLabelValues(n.Verb, n.Outcome).Set(float64(n.OccurredAt.Unix()))
}

// Sink returns an auth.ActivitySink feeding these metrics
func (m *ActivityMetrics) Sink() auth.ActivitySink {
	return activitymap.NewSink(func(_ context.Context, n activitymap.Normalized) error {
		m.Observe(n)
		return nil
	})
}
