package journal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the frame magic identifying a zstandard-compressed
// stream (spec.md §4.4, GLOSSARY "zstd frame").
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// maybeDecompress peeks at the first four bytes of r. If they match the
// zstd frame magic, it wraps r in a streaming zstd decompressor; the
// teacher's handleZstdBlob reads a whole compressed blob into memory
// with io.ReadAll before switching readers, which is fine for a
// bounded RDB value but wrong here: §4.4 requires multi-GB journals to
// decode in bounded memory, so the returned reader must pull
// compressed input and emit decompressed output incrementally rather
// than ever materializing the full payload. If the magic is absent, r
// is returned unchanged (plain passthrough).
//
// The returned closer must be called once the caller is done reading,
// to release the zstd decoder's internal buffers.
func maybeDecompress(r io.Reader) (io.Reader, io.Closer, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, fmt.Errorf("journal: peek zstd magic: %w", err)
	}

	if bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("journal: init zstd decoder: %w", err)
		}
		rc := dec.IOReadCloser()
		return rc, rc, nil
	}

	return br, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
