package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendContract exercises behaviour every Cache implementation shares.
func backendContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "changelog:expo-camera-main", []byte("# 1.0.0"), time.Hour))
	data, ok, err := c.Get(ctx, "changelog:expo-camera-main")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# 1.0.0", string(data))

	require.NoError(t, c.Set(ctx, "changelog:expo-camera-main", []byte("# 2.0.0"), time.Hour))
	data, _, _ = c.Get(ctx, "changelog:expo-camera-main")
	assert.Equal(t, "# 2.0.0", string(data), "Set should overwrite")

	require.NoError(t, c.Set(ctx, "changelog:expo-av-main", []byte("x"), 0))
	require.NoError(t, c.Set(ctx, "manifest:expo-av:1.0.0", []byte("{}"), 0))
	require.NoError(t, c.Clear(ctx, "changelog:"))

	_, ok, _ = c.Get(ctx, "changelog:expo-av-main")
	assert.False(t, ok, "prefixed key should be cleared")
	_, ok, _ = c.Get(ctx, "manifest:expo-av:1.0.0")
	assert.True(t, ok, "other prefix should survive Clear")

	require.NoError(t, c.Delete(ctx, "manifest:expo-av:1.0.0"))
	require.NoError(t, c.Delete(ctx, "manifest:expo-av:1.0.0"), "deleting twice is not an error")
	_, ok, _ = c.Get(ctx, "manifest:expo-av:1.0.0")
	assert.False(t, ok)
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()
	backendContract(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be a miss")
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	path := c.path("k")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt entry should be removed")
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	backendContract(t, c)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLiteCache(ctx, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackendRecreatesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a sqlite database "), 512), 0o644))

	opener := SQLiteBackend(path)
	_, err := opener.Open(ctx)
	require.Error(t, err, "garbage file should fail to open")

	store := OpenStore(ctx, opener, nil)
	defer store.Close()
	assert.True(t, store.Ready(), "store should recover by recreating the database")
}
