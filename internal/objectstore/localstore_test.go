package objectstore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfdecode/internal/objectstore"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalStoreListsOnlyJournalKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "buckets/a/00.journal", "a")
	writeFile(t, root, "buckets/a/00.journal.zst", "b")
	writeFile(t, root, "buckets/a/metadata.json", "c")

	store := objectstore.NewLocalStore(root)
	objs, err := store.List(context.Background(), "buckets/a")
	require.NoError(t, err)

	var keys []string
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	assert.ElementsMatch(t, []string{"buckets/a/00.journal", "buckets/a/00.journal.zst"}, keys)
}

func TestLocalStoreListMissingPrefixIsEmptyNotError(t *testing.T) {
	store := objectstore.NewLocalStore(t.TempDir())
	objs, err := store.List(context.Background(), "does/not/exist")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestLocalStoreOpenStreamsContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.journal", "payload")

	store := objectstore.NewLocalStore(root)
	rc, err := store.Open(context.Background(), "x.journal")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestIsJournalKey(t *testing.T) {
	cases := map[string]bool{
		"a/b/foo.journal":     true,
		"a/b/foo.journal.zst": true,
		"a/b/foo.json":        false,
		"a/b/journal.txt":     false,
	}
	for key, want := range cases {
		assert.Equalf(t, want, objectstore.IsJournalKey(key), "key %q", key)
	}
}
