package cli

import (
	"time"

	"sfdecode/internal/journal"
)

// multiRecorder fans a single journal.Recorder call out to several,
// so decode can feed both Prometheus counters and an optional live
// status stream from one orchestrator run.
type multiRecorder []journal.Recorder

func (m multiRecorder) JournalStarted(name string) {
	for _, r := range m {
		r.JournalStarted(name)
	}
}

func (m multiRecorder) JournalCompleted(name string, summary journal.Summary, err error, duration time.Duration) {
	for _, r := range m {
		r.JournalCompleted(name, summary, err, duration)
	}
}
