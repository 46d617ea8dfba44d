package journal

import (
	"errors"
	"fmt"
	"io"
)

// Decoder drives one journal to completion. It is single-use: construct
// one per journal with New, and discard it once Decode or Next
// terminates. Nothing on Decoder is safe for concurrent use; running
// many journals concurrently means running many independent Decoders
// (spec.md §5).
type Decoder struct {
	r      *reader
	st     *state
	closer io.Closer
}

// New constructs a Decoder over src, transparently unwrapping a zstd
// frame if one is present at the start of the stream (spec.md §4.4).
func New(src io.Reader) (*Decoder, error) {
	unwrapped, closer, err := maybeDecompress(src)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		r:      newReader(unwrapped),
		st:     newState(),
		closer: closer,
	}, nil
}

// Close releases resources held by the zstd adapter, if any. Safe to
// call multiple times.
func (d *Decoder) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Next pulls the decoder forward until it either yields an event or
// reaches a terminal condition. It returns (nil, io.EOF) on a clean
// end-of-journal (the opcode read itself hit end-of-stream with no
// partial record in flight) and (nil, *DecodeError) for every other
// failure, per the recovery policy in spec.md §7: the journal is done
// either way, but only io.EOF means "nothing was lost".
func (d *Decoder) Next() (*Event, error) {
	for {
		offset := d.r.offsetNow()
		op, err := d.r.readU8()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, newDecodeError(Truncated, offset, err)
		}

		res, err := dispatch(opcode(op), d.r, d.st)
		if err != nil {
			return nil, newDecodeError(classify(err), offset, err)
		}
		if res.yielded {
			return res.event, nil
		}
	}
}

// classify maps an internal sentinel or wrapped I/O error to the Kind
// the recovery policy in spec.md §7 uses to decide (and log) why a
// journal stopped early.
func classify(err error) Kind {
	switch {
	case errors.Is(err, errVarintOverflow),
		errors.Is(err, errWindowOverread),
		errors.Is(err, errUnsetBaseTime):
		return Malformed
	case errors.Is(err, errOutOfRange):
		return OutOfRange
	case errors.Is(err, errUnknownOpcode):
		return UnknownOpcode
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Truncated
	default:
		return IOError
	}
}

// Sink receives one decoded Event at a time, by value. The copy stays
// valid after the call: Decode clears and reuses only its own pooled
// storage (see pool.go), not the value the sink received.
type Sink interface {
	Accept(Event) error
}

// Summary reports what happened decoding one journal: how many events
// were produced before the journal ended or failed, and — if it
// failed — the kind and approximate byte offset of the failure.
// Summary is what the per-journal log line in spec.md §7 is built from.
type Summary struct {
	EventsDecoded int64
	Failed        bool
	FailureKind   Kind
	FailureOffset int64
}

// Decode drives the decoder to end-of-journal (or the first
// unrecoverable local failure), handing each event to sink in the exact
// order event opcodes appeared in the byte stream. Events handed to
// sink before a failure are guaranteed complete and correct: the driver
// never emits a partial event (spec.md §4.5, §8 property 5).
//
// Decode never returns an error for a journal-local failure; that is
// reported through the returned Summary instead, so that decoding many
// journals never requires the caller to distinguish "fatal" from
// "this one journal was corrupt". A non-nil error return means sink
// itself failed, which the caller should treat as fatal to this
// journal's output (the sink, e.g. a file write, is no longer trusted).
func (d *Decoder) Decode(sink Sink) (Summary, error) {
	var summary Summary
	for {
		ev, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return summary, nil
			}
			var de *DecodeError
			if errors.As(err, &de) {
				summary.Failed = true
				summary.FailureKind = de.Kind
				summary.FailureOffset = de.Offset
				return summary, nil
			}
			return summary, fmt.Errorf("journal: unexpected decode error: %w", err)
		}
		if err := sink.Accept(*ev); err != nil {
			return summary, fmt.Errorf("journal: sink rejected event: %w", err)
		}
		putEvent(ev)
		summary.EventsDecoded++
	}
}
