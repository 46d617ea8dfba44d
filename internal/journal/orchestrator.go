package journal

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Job names one journal blob and knows how to open a byte stream over
// it. The orchestrator doesn't know or care whether Open reaches object
// storage or local disk — that seam belongs to internal/objectstore.
type Job struct {
	Name string
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Result is one journal's outcome: its Summary (see decoder.go) plus any
// error opening the byte source or writing to its sink. A Summary with
// Failed set is not an Err: it means the journal decoded partially and
// the recovery policy already handled it, exactly as spec.md §7
// prescribes. Err is reserved for failures the per-journal recovery
// policy doesn't cover — the source wouldn't open, or the sink itself
// broke.
type Result struct {
	Name    string
	Summary Summary
	Err     error
}

// SinkFactory builds the Sink a single journal's events are written to,
// along with a function to flush/close it. Called once per Job from
// whichever worker goroutine picks that Job up.
type SinkFactory func(jobName string) (Sink, func() error, error)

// Recorder observes journal lifecycle events for logging and metrics
// (internal/metrics implements this without internal/journal needing to
// import it back).
type Recorder interface {
	JournalStarted(name string)
	JournalCompleted(name string, summary Summary, err error, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) JournalStarted(string)                                  {}
func (noopRecorder) JournalCompleted(string, Summary, error, time.Duration) {}

// Orchestrator runs independent journals concurrently with no
// cross-journal coordination, shared cache, or ordering guarantee
// between events of different journals (spec.md §5). This generalizes
// the teacher's FlowWriter concurrency model (internal/replica/
// flow_writer.go: a fixed worker count pulling work off a channel) from
// "one writer per replication shard" to "one decoder per journal blob".
type Orchestrator struct {
	// Concurrency bounds how many journals decode at once. Defaults to
	// 1 if unset.
	Concurrency int
	// Limiter optionally throttles how fast new journals are started,
	// the same role golang.org/x/time/rate plays in FlowWriter's
	// adaptive write throttling.
	Limiter *rate.Limiter
	// Recorder observes start/completion of each journal. Defaults to a
	// no-op if unset.
	Recorder Recorder
}

// Run decodes every job, at most Concurrency at a time, and returns one
// Result per job in the order jobs were given (not the order they
// finished in — callers that want completion order should read
// Recorder callbacks instead).
func (o *Orchestrator) Run(ctx context.Context, jobs []Job, sinkFactory SinkFactory) []Result {
	concurrency := o.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	recorder := o.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	results := make([]Result, len(jobs))
	indices := make(chan int, len(jobs))
	for i := range jobs {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = o.runOne(ctx, jobs[i], sinkFactory, recorder)
			}
		}()
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) runOne(ctx context.Context, job Job, sinkFactory SinkFactory, recorder Recorder) Result {
	if o.Limiter != nil {
		if err := o.Limiter.Wait(ctx); err != nil {
			return Result{Name: job.Name, Err: fmt.Errorf("journal: rate limiter: %w", err)}
		}
	}

	recorder.JournalStarted(job.Name)
	start := time.Now()

	src, err := job.Open(ctx)
	if err != nil {
		result := Result{Name: job.Name, Err: fmt.Errorf("journal: open %q: %w", job.Name, err)}
		recorder.JournalCompleted(job.Name, Summary{}, result.Err, time.Since(start))
		return result
	}
	defer src.Close()

	sink, flush, err := sinkFactory(job.Name)
	if err != nil {
		result := Result{Name: job.Name, Err: fmt.Errorf("journal: build sink for %q: %w", job.Name, err)}
		recorder.JournalCompleted(job.Name, Summary{}, result.Err, time.Since(start))
		return result
	}

	dec, err := New(src)
	if err != nil {
		result := Result{Name: job.Name, Err: fmt.Errorf("journal: init decoder for %q: %w", job.Name, err)}
		recorder.JournalCompleted(job.Name, Summary{}, result.Err, time.Since(start))
		return result
	}
	defer dec.Close()

	summary, decErr := dec.Decode(sink)
	if decErr == nil {
		decErr = flush()
	} else if ferr := flush(); ferr != nil && decErr == nil {
		decErr = ferr
	}

	result := Result{Name: job.Name, Summary: summary, Err: decErr}
	recorder.JournalCompleted(job.Name, summary, decErr, time.Since(start))
	return result
}
