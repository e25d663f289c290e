package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"blogs/a.jpg":                   "blogs/a.jpg",
		"/storage/blogs/a.jpg":          "blogs/a.jpg",
		"storage/properties/b.png":      "properties/b.png",
		"/profile_pictures/c.webp":      "profile_pictures/c.webp",
		"https://cdn.example.com/x.jpg": "https://cdn.example.com/x.jpg",
		"":                              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}

func TestResolver_FallsBackToPublicDir(t *testing.T) {
	ctx := context.Background()
	primary := newTestLocal(t)
	publicDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "blogs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "blogs", "legacy.jpg"), []byte("x"), 0o644))
	require.NoError(t, primary.Save(ctx, "blogs/new.jpg", strings.NewReader("y"), "image/jpeg"))

	r := NewResolver(primary, publicDir, "/assets")

	assert.Equal(t, "/storage/blogs/new.jpg", r.URL(ctx, "blogs/new.jpg"))
	assert.Equal(t, "/assets/blogs/legacy.jpg", r.URL(ctx, "/storage/blogs/legacy.jpg"))
	assert.Equal(t, "https://x.test/a.jpg", r.URL(ctx, "https://x.test/a.jpg"))
	assert.Equal(t, "", r.URL(ctx, ""))

	ok, err := r.Exists(ctx, "blogs/legacy.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, "blogs/missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Exists(ctx, "https://x.test/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
}
