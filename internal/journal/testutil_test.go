package journal_test

import "bytes"

// encodeVarint and encodeLP build journal-format primitives the same
// way the production opcode/event encoders on the writer side would,
// so tests assemble byte streams from field values instead of
// hand-transcribed hex, and stay correct by construction.
func encodeVarint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

func encodeLP(b []byte) []byte {
	out := encodeVarint(uint64(len(b)))
	return append(out, b...)
}

type kv struct {
	key, value []byte
}

type eventSpec struct {
	opcode       byte
	flags        byte
	streamID     uint64
	streamOffset uint64
	delta        uint64
	metadata     []kv
	message      []byte
	// rawDeltaBytes, when non-nil, is written verbatim instead of the
	// varint encoding of delta — used to construct a malformed varint.
	rawDeltaBytes []byte
}

func buildEvent(spec eventSpec) []byte {
	var payload bytes.Buffer
	payload.WriteByte(spec.flags)
	payload.Write(encodeVarint(spec.streamID))
	payload.Write(encodeVarint(spec.streamOffset))
	if spec.rawDeltaBytes != nil {
		payload.Write(spec.rawDeltaBytes)
	} else {
		payload.Write(encodeVarint(spec.delta))
	}
	payload.Write(encodeVarint(uint64(len(spec.metadata))))
	for _, pair := range spec.metadata {
		payload.Write(encodeLP(pair.key))
		payload.Write(encodeLP(pair.value))
	}
	payload.Write(spec.message)

	op := spec.opcode
	if op == 0 {
		op = 0x20
	}
	var out bytes.Buffer
	out.WriteByte(op)
	out.Write(encodeVarint(uint64(payload.Len())))
	out.Write(payload.Bytes())
	return out.Bytes()
}

func newStringOp(opcode byte, s string) []byte {
	out := []byte{opcode}
	return append(out, encodeLP([]byte(s))...)
}

func setActiveOp(opcode byte, idx uint64) []byte {
	out := []byte{opcode}
	return append(out, encodeVarint(idx)...)
}

func setBaseTimeOp(secs uint64) []byte {
	out := []byte{0x14}
	return append(out, encodeVarint(secs)...)
}

func reservedOp(opByte byte, v uint64) []byte {
	out := []byte{opByte}
	return append(out, encodeVarint(v)...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
