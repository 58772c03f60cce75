package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"remedy/internal/project"
)

func TestCachePutGet(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	key := project.OfString("unit")

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, c.Put(key, &Entry{
		Unit:        "u",
		Name:        "demo",
		Rules:       []string{"text@v1.2.0"},
		FilePaths:   []string{"a.txt"},
		FileHashes:  []project.Digest{project.OfString("content")},
		Fixed:       3,
		Iterations:  2,
		ConvergedAt: at,
	}))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cacheSchemaVersion, got.Schema)
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, []project.Digest{project.OfString("content")}, got.FileHashes)
	assert.True(t, at.Equal(got.ConvergedAt))

	tmp, err := filepath.Glob(filepath.Join(c.Dir(), "units", "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, tmp, "temporary files are renamed into place")
}

func TestCacheIgnoresOtherSchema(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	key := project.OfString("unit")

	p := c.pathFor(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	data, err := msgpack.Marshal(&Entry{Schema: cacheSchemaVersion + 1, Unit: "u"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0o644))

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheCorruptEntry(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	key := project.OfString("unit")
	p := c.pathFor(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte{0xc1}, 0o644))

	_, ok, err := c.Get(key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCacheDropAll(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	key := project.OfString("unit")
	require.NoError(t, c.Put(key, &Entry{Unit: "u"}))

	require.NoError(t, c.DropAll())
	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.DirExists(t, c.Dir())
}

func TestNilCache(t *testing.T) {
	var c *Cache
	require.NoError(t, c.Put(project.OfString("x"), &Entry{}))
	_, ok, err := c.Get(project.OfString("x"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.DropAll())
	assert.Empty(t, c.Dir())
}

func TestOpenCacheDefaultDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	c, err := OpenCache("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "remedy"), c.Dir())
}
