// Package objectstore lists and opens journal blobs from wherever they
// live — an S3 bucket in production, a local directory in tests and
// for local-disk decoding.
package objectstore

import (
	"context"
	"io"
	"strings"
)

// Object names one listed blob and its size, as reported by the
// underlying store.
type Object struct {
	Key  string
	Size int64
}

// Store enumerates and opens journal blobs. Open must return a reader
// that streams the blob's bytes without buffering the whole object in
// memory — the journal decoder depends on that to bound memory on
// multi-gigabyte journals.
type Store interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// IsJournalKey reports whether key names a frozen journal blob, plain
// or zstd-compressed, per spec.md §6 ("journal" or "journal.zst").
func IsJournalKey(key string) bool {
	return strings.HasSuffix(key, "journal") || strings.HasSuffix(key, "journal.zst")
}
