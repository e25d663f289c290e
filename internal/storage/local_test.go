package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/storage"})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	require.NoError(t, s.Save(ctx, "properties/a.jpg", strings.NewReader("data"), "image/jpeg"))

	ok, err := s.Exists(ctx, "properties/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	size, err := s.GetSize(ctx, "properties/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	r, err := s.Get(ctx, "properties/a.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(r)
	r.Close()
	assert.Equal(t, "data", string(body))

	url, err := s.GetURL(ctx, "properties/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/storage/properties/a.jpg", url)

	require.NoError(t, s.Delete(ctx, "properties/a.jpg"))
	ok, err = s.Exists(ctx, "properties/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, "properties/a.jpg"))

	_, err = s.Get(ctx, "properties/a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_StaysInsideBasePath(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	require.NoError(t, s.Save(ctx, "../../escape.txt", strings.NewReader("x"), "text/plain"))

	// "../" схлопывается, файл оказывается внутри basePath
	ok, err := s.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
