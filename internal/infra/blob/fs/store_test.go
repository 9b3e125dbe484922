package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedigreecore/internal/blob/core"
)

func TestFilesystemStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, core.DriverFilesystem, s.Driver())

	info, err := s.Put(ctx, "reports/rex/20240101T000000Z.json", strings.NewReader("{}"), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"individual": "rex"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size)
	assert.Len(t, info.ETag, 64)
	assert.True(t, strings.HasPrefix(info.URL, "file://archive.local/reports/rex/"))

	head, err := s.Head(ctx, info.Key)
	require.NoError(t, err)
	assert.Equal(t, info.ETag, head.ETag)
	assert.Equal(t, "rex", head.Metadata["individual"])

	got, rc, err := s.Get(ctx, info.Key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, "application/json", got.ContentType)

	_, err = s.Put(ctx, info.Key, strings.NewReader("again"), core.PutOptions{})
	assert.ErrorIs(t, err, core.ErrExists)

	deleted, err := s.Delete(ctx, info.Key)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.Delete(ctx, info.Key)
	require.NoError(t, err)
	assert.False(t, deleted)
	_, err = s.Head(ctx, info.Key)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, _, err = s.Get(ctx, info.Key)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFilesystemStoreRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "  ", "/etc/passwd", "../escape", "a/../../b", "x.meta"} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{})
		assert.Error(t, err, "key %q", key)
	}
}

func TestFilesystemStoreListFiltersPrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	for _, k := range []string{"reports/b/2.json", "reports/a/1.json", "reports/b/1.json"} {
		_, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{})
		require.NoError(t, err)
	}
	// stray file without sidecar is ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "reports", "stray.json"), []byte("x"), 0o644))

	infos, err := s.List(ctx, "reports/b/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "reports/b/1.json", infos[0].Key)
	assert.Equal(t, "reports/b/2.json", infos[1].Key)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFilesystemStoreCorruptSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	_, err = s.Put(ctx, "k.json", strings.NewReader("x"), core.PutOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "k.json.meta"), []byte("{"), 0o644))
	_, err = s.Head(ctx, "k.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
	_, err = s.List(ctx, "")
	assert.Error(t, err)
}

func TestFilesystemStorePresign(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	u, err := s.PresignURL(context.Background(), "reports/a.json", core.SignedURLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "file://archive.local/reports/a.json", u)
	_, err = s.PresignURL(context.Background(), "reports/a.json", core.SignedURLOptions{Method: "PUT"})
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestNewDefaultsRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot, s.Root())
	_, err = os.Stat(DefaultRoot)
	assert.NoError(t, err)
}
