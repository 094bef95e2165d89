package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlaybackMetrics records scheduler activity and moderation throughput.
type PlaybackMetrics struct {
	itemsStarted *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	slotSeconds  prometheus.Histogram
	queueDepth   prometheus.Gauge
	dispositions *prometheus.CounterVec
}

// NewPlaybackMetrics registers the playback metrics on the provided registerer.
func NewPlaybackMetrics(reg prometheus.Registerer) *PlaybackMetrics {
	if reg == nil {
		return &PlaybackMetrics{}
	}
	itemsStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "playback_items_started_total",
		Help: "Items that entered the playback slot.",
	}, []string{"kind"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "playback_phase_transitions_total",
		Help: "Playback phase transitions.",
	}, []string{"to"})
	slotSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "playback_slot_seconds",
		Help:    "Configured display duration of items entering the slot.",
		Buckets: []float64{5, 10, 15, 30, 60, 120, 300},
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "approval_queue_depth",
		Help: "Pending submissions awaiting staff review.",
	})
	dispositions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "submission_dispositions_total",
		Help: "Approve/reject decisions taken by staff.",
	}, []string{"decision"})
	reg.MustRegister(itemsStarted, transitions, slotSeconds, queueDepth, dispositions)
	return &PlaybackMetrics{
		itemsStarted: itemsStarted,
		transitions:  transitions,
		slotSeconds:  slotSeconds,
		queueDepth:   queueDepth,
		dispositions: dispositions,
	}
}

// ItemStarted records an item of the given kind entering the slot.
func (p *PlaybackMetrics) ItemStarted(kind string, duration time.Duration) {
	if p == nil || p.itemsStarted == nil {
		return
	}
	p.itemsStarted.WithLabelValues(normalizeLabel(kind)).Inc()
	p.slotSeconds.Observe(duration.Seconds())
}

// PhaseTransition records the scheduler moving to a new phase.
func (p *PlaybackMetrics) PhaseTransition(to string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// SetQueueDepth publishes the current pending count.
func (p *PlaybackMetrics) SetQueueDepth(n int) {
	if p == nil || p.queueDepth == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

// Disposition records a staff approve or reject decision.
func (p *PlaybackMetrics) Disposition(decision string) {
	if p == nil || p.dispositions == nil {
		return
	}
	p.dispositions.WithLabelValues(normalizeLabel(decision)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
