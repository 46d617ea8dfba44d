// Package sink implements the output side of the pipeline: turning
// decoded journal.Events into the newline-delimited JSON contract
// spec.md §6 defines, or discarding them for dry runs.
package sink

import (
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"sfdecode/internal/journal"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// record is the wire shape of one decoded event. Field order and names
// are byte-exact with spec.md §6; json-iterator serializes struct
// fields in declaration order the same way encoding/json does.
type record struct {
	Host         string `json:"host"`
	Source       string `json:"source"`
	Sourcetype   string `json:"sourcetype"`
	IndexTime    uint64 `json:"index_time"`
	Message      string `json:"message"`
	StreamID     uint64 `json:"stream_id"`
	StreamOffset uint64 `json:"stream_offset"`
}

// JSONLWriter writes one JSON object per line to an underlying
// io.Writer, one line per accepted event. Accept holds a mutex, so
// concurrent calls never interleave lines; in the decode pipeline each
// journal owns one writer, per spec.md §5's "no shared mutable state
// between journals".
type JSONLWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

func (j *JSONLWriter) Accept(ev journal.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	b, err := jsonAPI.Marshal(record{
		Host:         ev.Host,
		Source:       ev.Source,
		Sourcetype:   ev.Sourcetype,
		IndexTime:    ev.IndexTime,
		Message:      ev.Message,
		StreamID:     ev.StreamID,
		StreamOffset: ev.StreamOffset,
	})
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = j.w.Write(b)
	return err
}

// Close is a no-op: JSONLWriter never owns w's lifecycle — whatever
// opened w (in the decode command, the per-journal local file) closes it.
func (j *JSONLWriter) Close() error { return nil }
