package journal

// opcode is the one-byte tag selecting the next record class in the
// journal byte stream (spec.md §4.2). The numeric ranges below are
// authoritative; opcode itself stays a plain byte rather than a Go enum
// with named members for every value, since the reserved and event
// classes are ranges, not individual values.
type opcode byte

const (
	opNOP                 opcode = 0x00
	opNewStringHost       opcode = 0x03
	opNewStringSource     opcode = 0x04
	opNewStringSourcetype opcode = 0x05
	opNewStringHostAlt    opcode = 0x06
	opSetActiveHost       opcode = 0x11
	opSetActiveSource     opcode = 0x12
	opSetActiveSourcetype opcode = 0x13
	opSetBaseTime         opcode = 0x14

	opReservedLow  opcode = 0x15
	opReservedHigh opcode = 0x1F

	opEventLow  opcode = 0x20
	opEventHigh opcode = 0x2B
)

func (o opcode) isReserved() bool { return o >= opReservedLow && o <= opReservedHigh }
func (o opcode) isEvent() bool    { return o >= opEventLow && o <= opEventHigh }

// dispatchResult tells the driver loop what happened on one opcode
// dispatch: every successful dispatch either mutates state, yields one
// event, or is a no-op (spec.md §4.2 — state transitions are total).
type dispatchResult struct {
	event   *Event
	yielded bool
}

// dispatch consumes the payload for one already-read opcode byte,
// mutating st or producing an event. It models the opcode table as an
// exhaustive switch with a single catch-all arm, rather than a
// numeric-keyed handler map, so every known opcode class has an explicit
// arm and anything else falls through to UnknownOpcode.
func dispatch(op opcode, r *reader, st *state) (dispatchResult, error) {
	switch {
	case op == opNOP:
		return dispatchResult{}, nil

	case op == opNewStringHost || op == opNewStringHostAlt:
		b, err := r.readLPBytes()
		if err != nil {
			return dispatchResult{}, err
		}
		st.appendString(dictHost, toUTF8Lossy(b))
		return dispatchResult{}, nil

	case op == opNewStringSource:
		b, err := r.readLPBytes()
		if err != nil {
			return dispatchResult{}, err
		}
		st.appendString(dictSource, toUTF8Lossy(b))
		return dispatchResult{}, nil

	case op == opNewStringSourcetype:
		b, err := r.readLPBytes()
		if err != nil {
			return dispatchResult{}, err
		}
		st.appendString(dictSourcetype, toUTF8Lossy(b))
		return dispatchResult{}, nil

	case op == opSetActiveHost:
		idx, err := r.readVarint()
		if err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{}, st.setActive(dictHost, idx)

	case op == opSetActiveSource:
		idx, err := r.readVarint()
		if err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{}, st.setActive(dictSource, idx)

	case op == opSetActiveSourcetype:
		idx, err := r.readVarint()
		if err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{}, st.setActive(dictSourcetype, idx)

	case op == opSetBaseTime:
		secs, err := r.readVarint()
		if err != nil {
			return dispatchResult{}, err
		}
		st.setBaseTime(secs)
		return dispatchResult{}, nil

	case op.isReserved():
		// Format-observed state-class opcodes whose payload is a single
		// varint; the decoder need not interpret them, but must consume
		// exactly one varint to keep the byte cursor aligned.
		if _, err := r.readVarint(); err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{}, nil

	case op.isEvent():
		ev, err := parseEvent(r, st)
		if err != nil {
			return dispatchResult{}, err
		}
		pooled := getEvent()
		*pooled = ev
		return dispatchResult{event: pooled, yielded: true}, nil

	default:
		return dispatchResult{}, errUnknownOpcode
	}
}
