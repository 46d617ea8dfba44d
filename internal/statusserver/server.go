// Package statusserver serves live per-journal decode progress over
// HTTP as Server-Sent Events. It fills the role the teacher's
// internal/web.DashboardServer filled (bind a listener, serve a mux,
// block) scoped to what this system has to report: a stream of
// journal lifecycle events, not a stateful consistency dashboard.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tmaxmax/go-sse"

	"sfdecode/internal/journal"
)

// Event is one journal lifecycle notification pushed to SSE clients.
type Event struct {
	Journal    string `json:"journal"`
	Status     string `json:"status"` // "started", "completed", "failed"
	Events     int64  `json:"events,omitempty"`
	Kind       string `json:"kind,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// Server publishes journal lifecycle events to any number of connected
// SSE clients under /events, and answers /healthz for liveness checks.
type Server struct {
	addr string
	sse  *sse.Server
	http *http.Server
}

func New(addr string) *Server {
	sseServer := sse.NewServer()
	mux := http.NewServeMux()
	mux.Handle("/events", sseServer)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		addr: addr,
		sse:  sseServer,
		http: &http.Server{Handler: mux},
	}
}

// Handler returns the server's HTTP handler without binding a port,
// for embedding in tests (httptest.NewServer) or a larger mux.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe binds addr and blocks serving requests until ctx is
// canceled, at which point it shuts both the HTTP server and the SSE
// provider down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("statusserver: listen %s: %w", s.addr, err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		_ = s.sse.Shutdown()
		return s.http.Shutdown(context.Background())
	}
}

// Recorder returns a journal.Recorder that publishes each journal's
// start and completion as an SSE message on the default topic.
func (s *Server) Recorder() journal.Recorder {
	return recorder{s: s}
}

type recorder struct{ s *Server }

func (r recorder) JournalStarted(name string) {
	r.publish(Event{Journal: name, Status: "started"})
}

func (r recorder) JournalCompleted(name string, summary journal.Summary, err error, duration time.Duration) {
	ev := Event{
		Journal:    name,
		Status:     "completed",
		Events:     summary.EventsDecoded,
		DurationMS: duration.Milliseconds(),
	}
	switch {
	case err != nil:
		ev.Status = "failed"
		ev.Kind = "infra_error"
	case summary.Failed:
		ev.Status = "failed"
		ev.Kind = summary.FailureKind.String()
	}
	r.publish(ev)
}

func (r recorder) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := &sse.Message{}
	msg.AppendData(payload)
	_ = r.s.sse.Publish(msg)
}
