package sink

import (
	"sync/atomic"

	"sfdecode/internal/journal"
)

// NopSink discards every event after counting it, grounded on the
// teacher's internal/pipeline.noopStage — a placeholder stage that
// always succeeds. Used for dry runs and throughput benchmarking where
// the decode cost is what's being measured, not the write.
type NopSink struct {
	count int64
}

func NewNopSink() *NopSink { return &NopSink{} }

func (n *NopSink) Accept(journal.Event) error {
	atomic.AddInt64(&n.count, 1)
	return nil
}

func (n *NopSink) Count() int64 { return atomic.LoadInt64(&n.count) }
