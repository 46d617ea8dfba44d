package journal

import (
	"errors"
	"fmt"
	"io"
)

// Kind classifies why decoding a journal stopped, in increasing severity.
// EndOfStream is not a failure: it is the clean end of a well-formed
// journal. Every other kind terminates the current journal only; the
// driver discards the remainder and keeps whatever events were already
// produced.
type Kind int

const (
	// EndOfStream means the opcode read hit a clean end of input.
	EndOfStream Kind = iota
	// Truncated means the byte source ended in the middle of a record.
	Truncated
	// Malformed means a local violation of the format: varint overflow,
	// an event length window violation, or an index_time delta against
	// an unset base_time.
	Malformed
	// OutOfRange means a SetActive opcode referenced an undefined
	// dictionary entry.
	OutOfRange
	// UnknownOpcode means the opcode byte fell outside both the defined
	// opcode set and the reserved state range.
	UnknownOpcode
	// IOError surfaces a failure from the underlying byte source.
	IOError
	// DecompressionError names a failure of the zstd adapter. No code
	// path in this package produces it: a read failure from the zstd
	// adapter is classified as IOError, and a failure to set the adapter
	// up is returned by New as a plain error.
	DecompressionError
)

func (k Kind) String() string {
	switch k {
	case EndOfStream:
		return "end_of_stream"
	case Truncated:
		return "truncated"
	case Malformed:
		return "malformed"
	case OutOfRange:
		return "out_of_range"
	case UnknownOpcode:
		return "unknown_opcode"
	case IOError:
		return "io_error"
	case DecompressionError:
		return "decompression_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DecodeError reports a journal-local decode failure together with the
// approximate byte offset it occurred at and the kind of failure, so the
// driver can log (name, events-decoded, final-status) per the recovery
// policy: local to one journal, never fatal to the batch.
type DecodeError struct {
	Kind   Kind
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at offset %d: %v", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(kind Kind, offset int64, err error) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Err: err}
}

// errOutOfRange is the sentinel wrapped by state.setActive when a
// SetActive opcode references an undefined dictionary entry.
var errOutOfRange = errors.New("journal: active index references an undefined dictionary entry")

// errUnknownOpcode is the sentinel for an opcode byte outside both the
// defined opcode set and the reserved state range.
var errUnknownOpcode = errors.New("journal: unknown opcode")

// IsEndOfStream reports whether err is a clean end-of-journal signal.
func IsEndOfStream(err error) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind == EndOfStream
	}
	return errors.Is(err, io.EOF)
}

// KindOf extracts the Kind carried by err, defaulting to IOError for
// errors that did not originate from this package (e.g. a raw network
// failure from the byte source).
func KindOf(err error) Kind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return IOError
}
