package journal

import "unicode/utf8"

// Event is the canonical decoded record described in spec.md §3. Message
// bytes are not guaranteed UTF-8 on the wire; Message is always a valid
// UTF-8 string with invalid sequences replaced, since a frozen log is a
// forensic artifact and losing an event to encoding is worse than a
// replacement character.
type Event struct {
	Host         string
	Source       string
	Sourcetype   string
	IndexTime    uint64
	Message      string
	StreamID     uint64
	StreamOffset uint64
}

// metadataOverrides captures the per-event metadata fields that, when
// present, override the active dictionary value for that event only
// without mutating decoder state.
type metadataOverrides struct {
	host       *string
	source     *string
	sourcetype *string
	raw        []byte
	hasRaw     bool
}

// parseEvent reads the variable-length event record that follows an
// Event opcode (0x20-0x2B) and composes it with the current decoder
// state, per spec.md §4.3. The opcode byte itself has already been
// consumed by the caller.
func parseEvent(r *reader, st *state) (Event, error) {
	l0, err := r.readVarint()
	if err != nil {
		return Event{}, err
	}

	window := newWindowReader(r, l0)

	flags, err := window.readU8()
	if err != nil {
		return Event{}, err
	}

	if flags&0x01 != 0 {
		if err := skipExtendedHeaders(window); err != nil {
			return Event{}, err
		}
	}

	streamID, err := window.readVarint()
	if err != nil {
		return Event{}, err
	}
	streamOffset, err := window.readVarint()
	if err != nil {
		return Event{}, err
	}

	delta, err := window.readVarint()
	if err != nil {
		return Event{}, err
	}
	if !st.baseTimeSet {
		return Event{}, errUnsetBaseTime
	}
	indexTime := st.baseTime + delta

	overrides, err := readMetadata(window)
	if err != nil {
		return Event{}, err
	}

	var rawMessage []byte
	if overrides.hasRaw {
		rawMessage = overrides.raw
	} else {
		rawMessage, err = window.readRemainder()
		if err != nil {
			return Event{}, err
		}
	}
	if err := window.skipToEnd(); err != nil {
		return Event{}, err
	}

	ev := Event{
		Host:         resolveField(overrides.host, st.activeValue(dictHost)),
		Source:       resolveField(overrides.source, st.activeValue(dictSource)),
		Sourcetype:   resolveField(overrides.sourcetype, st.activeValue(dictSourcetype)),
		IndexTime:    indexTime,
		Message:      toUTF8Lossy(rawMessage),
		StreamID:     streamID,
		StreamOffset: streamOffset,
	}
	return ev, nil
}

func resolveField(override *string, active string) string {
	if override != nil {
		return *override
	}
	return active
}

// skipExtendedHeaders consumes (key-varint, value-lp-bytes) pairs until a
// varint key of 0 terminates the list. No recognized header ids exist
// for the baseline event schema, so every header's key and value are
// read and discarded.
func skipExtendedHeaders(w *windowReader) error {
	for {
		key, err := w.readVarint()
		if err != nil {
			return err
		}
		if key == 0 {
			return nil
		}
		if _, err := w.readLPBytes(); err != nil {
			return err
		}
	}
}

// readMetadata reads the varint-prefixed count of (key-lp-bytes,
// value-lp-bytes) pairs and folds recognized keys into overrides. Keys
// not among host/source/sourcetype/_raw are read and discarded; this
// decoder does not surface arbitrary metadata.
func readMetadata(w *windowReader) (metadataOverrides, error) {
	var out metadataOverrides
	n, err := w.readVarint()
	if err != nil {
		return out, err
	}
	for i := uint64(0); i < n; i++ {
		keyBytes, err := w.readLPBytes()
		if err != nil {
			return out, err
		}
		valBytes, err := w.readLPBytes()
		if err != nil {
			return out, err
		}
		switch string(keyBytes) {
		case "host":
			v := toUTF8Lossy(valBytes)
			out.host = &v
		case "source":
			v := toUTF8Lossy(valBytes)
			out.source = &v
		case "sourcetype":
			v := toUTF8Lossy(valBytes)
			out.sourcetype = &v
		case "_raw":
			out.raw = valBytes
			out.hasRaw = true
		default:
			// _time, punct, and any other conventional field names are
			// parsed for framing but not surfaced in the output schema.
		}
	}
	return out, nil
}

// toUTF8Lossy decodes b as UTF-8, replacing invalid sequences with the
// Unicode replacement character. Policy: never fail an event on
// encoding (spec.md §9).
func toUTF8Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	buf := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		buf = append(buf, r)
		i += size
	}
	return string(buf)
}
