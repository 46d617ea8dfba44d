// Package metrics exposes decode progress as Prometheus counters and a
// histogram, generalizing the teacher's ad hoc atomic.Int64 globals
// (internal/replica/debug_counters.go) and periodic metricsRecorder
// (internal/replica/metrics.go) into a standard pull-based /metrics
// endpoint — there is no state store here to push a periodic snapshot
// into, so pull-based is the better fit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sfdecode/internal/journal"
)

// Recorder implements journal.Recorder, recording each journal's
// lifecycle into the package's registered collectors.
type Recorder struct {
	journalsDecoded *prometheus.CounterVec
	eventsDecoded   prometheus.Counter
	decodeErrors    *prometheus.CounterVec
	decodeDuration  prometheus.Histogram
}

// NewRecorder registers its collectors against reg. Pass
// prometheus.DefaultRegisterer to serve them from the default
// /metrics handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		journalsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "journals_decoded_total",
			Help: "Journals that finished decoding, labeled by outcome.",
		}, []string{"outcome"}),
		eventsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "events_decoded_total",
			Help: "Events successfully decoded across all journals.",
		}),
		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_decode_errors_total",
			Help: "Journal decode failures, labeled by failure kind.",
		}, []string{"kind"}),
		decodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "journal_decode_duration_seconds",
			Help:    "Wall-clock time spent decoding one journal.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) JournalStarted(name string) {}

func (r *Recorder) JournalCompleted(name string, summary journal.Summary, err error, duration time.Duration) {
	r.eventsDecoded.Add(float64(summary.EventsDecoded))
	r.decodeDuration.Observe(duration.Seconds())

	switch {
	case err != nil:
		r.journalsDecoded.WithLabelValues("infra_error").Inc()
	case summary.Failed:
		r.journalsDecoded.WithLabelValues("partial").Inc()
		r.decodeErrors.WithLabelValues(summary.FailureKind.String()).Inc()
	default:
		r.journalsDecoded.WithLabelValues("clean").Inc()
	}
}
