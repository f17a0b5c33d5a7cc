package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestNew_CreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", ".ice-cache")

	cache, err := New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	_, err = os.Stat(filepath.Join(cacheDir, DefaultFileName))
	assert.NoError(t, err)
}

func TestCache_SaveAndReload(t *testing.T) {
	cacheDir := t.TempDir()
	computed := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	warned := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)

	cache, err := New(cacheDir)
	require.NoError(t, err)

	cache.PutRecord(Record{
		File:         "./a.cpp",
		ComputedAt:   computed,
		Dependencies: []string{"./a.cpp", "./a.h", "/usr/include/stdio.h"},
	})
	cache.SetWarned("Header file not found: 'x.h'.", warned)

	require.NoError(t, cache.Save())
	require.NoError(t, cache.Close())

	// Reopen and verify everything survived
	cache, err = New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	rec, ok := cache.Record("./a.cpp")
	require.True(t, ok)
	assert.True(t, computed.Equal(rec.ComputedAt))
	assert.Equal(t, []string{"./a.cpp", "./a.h", "/usr/include/stdio.h"}, rec.Dependencies)

	last, ok := cache.LastWarned("Header file not found: 'x.h'.")
	require.True(t, ok)
	assert.True(t, warned.Equal(last))
}

func TestCache_UnsavedChangesAreLost(t *testing.T) {
	cacheDir := t.TempDir()

	cache, err := New(cacheDir)
	require.NoError(t, err)

	cache.PutRecord(Record{File: "./a.cpp", ComputedAt: time.Now()})
	require.NoError(t, cache.Close())

	cache, err = New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.Record("./a.cpp")
	assert.False(t, ok)
}

func TestCache_DeleteRecord(t *testing.T) {
	cacheDir := t.TempDir()

	cache, err := New(cacheDir)
	require.NoError(t, err)

	cache.PutRecord(Record{File: "./a.cpp", ComputedAt: time.Now()})
	cache.PutRecord(Record{File: "./b.cpp", ComputedAt: time.Now()})
	require.NoError(t, cache.Save())

	cache.DeleteRecord("./a.cpp")
	cache.DeleteRecord("./never.cpp")

	_, ok := cache.Record("./a.cpp")
	assert.False(t, ok)

	require.NoError(t, cache.Save())
	require.NoError(t, cache.Close())

	cache, err = New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	_, ok = cache.Record("./a.cpp")
	assert.False(t, ok, "deleted record should not come back")

	_, ok = cache.Record("./b.cpp")
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	cacheDir := t.TempDir()

	cache, err := New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	cache.PutRecord(Record{File: "./a.cpp", ComputedAt: time.Now()})
	cache.SetWarned("warning", time.Now())
	require.NoError(t, cache.Save())

	require.NoError(t, cache.Clear())

	_, ok := cache.Record("./a.cpp")
	assert.False(t, ok, "Cache should be empty after clear")

	_, ok = cache.LastWarned("warning")
	assert.False(t, ok)

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)
	assert.Equal(t, 0, stats.Warnings)
}

func TestCache_Stats(t *testing.T) {
	cacheDir := t.TempDir()
	cache, err := New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	// Initially empty
	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)
	assert.Equal(t, 0, stats.Warnings)

	for i := 0; i < 3; i++ {
		cache.PutRecord(Record{File: fmt.Sprintf("./f%d.cpp", i), ComputedAt: time.Now()})
	}
	cache.SetWarned("one", time.Now())

	// Stats reflect the database, not unsaved state
	stats, err = cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)

	require.NoError(t, cache.Save())

	stats, err = cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 1, stats.Warnings)
	assert.Greater(t, stats.Size, int64(0))
}

func TestCache_Load_DropsCorruptEntries(t *testing.T) {
	cacheDir := t.TempDir()

	cache, err := New(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	cache.PutRecord(Record{File: "./good.cpp", ComputedAt: time.Now()})
	require.NoError(t, cache.Save())

	err = cache.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(dependenciesBucket)).Put([]byte("./bad.cpp"), []byte("{not json"))
	})
	require.NoError(t, err)

	require.NoError(t, cache.Load())

	_, ok := cache.Record("./good.cpp")
	assert.True(t, ok)

	_, ok = cache.Record("./bad.cpp")
	assert.False(t, ok)
}
