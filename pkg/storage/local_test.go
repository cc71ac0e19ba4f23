package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")

	key := "products/7/photo.png"
	require.NoError(t, disk.Put(ctx, key, strings.NewReader("png-bytes"), "image/png"))

	ok, err := disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Get(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://localhost:8080/storage/products/7/photo.png", disk.URL(key))

	rec := httptest.NewRecorder()
	disk.Handler("/storage").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/products/7/photo.png", nil))
	assert.Equal(t, "png-bytes", rec.Body.String())

	require.NoError(t, disk.Delete(ctx, key))
	require.NoError(t, disk.Delete(ctx, key))
	ok, err = disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalDiskRejectsEscapingKeys(t *testing.T) {
	disk := storage.NewLocalDisk(t.TempDir(), "")
	err := disk.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	assert.Error(t, err)
}
