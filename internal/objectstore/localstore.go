package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"
)

// LocalStore implements Store over a local directory, for tests and
// for decoding journals already staged on disk.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

// List walks Root, returning every journal-named file under prefix
// with a key relative to Root (using forward slashes, matching the
// object-storage key convention).
func (s *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	base := filepath.Join(s.Root, filepath.FromSlash(prefix))
	err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if !IsJournalKey(key) {
			return nil
		}
		out = append(out, Object{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, trace.Wrap(err, "walking %s", base)
	}
	return out, nil
}

// Open opens key relative to Root. The context is accepted for
// interface parity with S3Store; local file opens don't block on it.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(key)))
	if err != nil {
		return nil, trace.Wrap(err, "opening %s", key)
	}
	return f, nil
}
