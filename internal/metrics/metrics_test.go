package metrics_test

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfdecode/internal/journal"
	"sfdecode/internal/metrics"
)

// counterValue finds the Counter value for metric name with the given
// label value, or fails the test if no such series was gathered.
func counterValue(t *testing.T, families []*dto.MetricFamily, name, labelName, labelValue string) float64 {
	t.Helper()
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if labelName == "" {
				return m.GetCounter().GetValue()
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == labelName && l.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s=%s} not found", name, labelName, labelValue)
	return 0
}

func TestRecorderCountsCleanJournal(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.JournalStarted("j1")
	r.JournalCompleted("j1", journal.Summary{EventsDecoded: 3}, nil, 10*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, float64(3), counterValue(t, families, "events_decoded_total", "", ""))
	assert.Equal(t, float64(1), counterValue(t, families, "journals_decoded_total", "outcome", "clean"))
}

func TestRecorderCountsPartialJournalByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	summary := journal.Summary{EventsDecoded: 2, Failed: true, FailureKind: journal.Truncated}
	r.JournalCompleted("j2", summary, nil, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, families, "journals_decoded_total", "outcome", "partial"))
	assert.Equal(t, float64(1), counterValue(t, families, "journal_decode_errors_total", "kind", "truncated"))
}

func TestRecorderCountsInfraErrorSeparately(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.JournalCompleted("j3", journal.Summary{}, errors.New("boom"), time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, families, "journals_decoded_total", "outcome", "infra_error"))
}
