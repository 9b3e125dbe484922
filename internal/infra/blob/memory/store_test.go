package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedigreecore/internal/blob/core"
)

func TestStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.Equal(t, core.DriverMemory, s.Driver())

	meta := map[string]string{"individual": "rex"}
	info, err := s.Put(ctx, "reports/rex/1.json", strings.NewReader(`{"ok":true}`), core.PutOptions{ContentType: "application/json", Metadata: meta})
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)
	assert.NotEmpty(t, info.ETag)

	meta["individual"] = "mutated"
	got, rc, err := s.Get(ctx, "reports/rex/1.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "rex", got.Metadata["individual"])
	assert.Equal(t, "application/json", got.ContentType)
}

func TestStoreRejectsDuplicateAndEmptyKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Put(ctx, "a", strings.NewReader("1"), core.PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "a", strings.NewReader("2"), core.PutOptions{})
	assert.True(t, errors.Is(err, core.ErrExists))
	_, err = s.Put(ctx, "  ", strings.NewReader("x"), core.PutOptions{})
	assert.Error(t, err)
}

func TestStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Head(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
	ok, err := s.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreListPrefixOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"reports/b/2", "reports/a/1", "reports/b/1", "other/x"} {
		_, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{})
		require.NoError(t, err)
	}
	infos, err := s.List(ctx, "reports/b/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "reports/b/1", infos[0].Key)
	assert.Equal(t, "reports/b/2", infos[1].Key)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "other/x", all[0].Key)

	deleted, err := s.Delete(ctx, "reports/a/1")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.Head(ctx, "reports/a/1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStorePresignUnsupported(t *testing.T) {
	_, err := New().PresignURL(context.Background(), "k", core.SignedURLOptions{})
	assert.ErrorIs(t, err, core.ErrUnsupported)
}
