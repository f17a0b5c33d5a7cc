package depend

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStamps_ModTime(t *testing.T) {
	root := t.TempDir()
	mtime := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	writeFile(t, root, "src/a.cpp", mtime)

	s := NewStamps(root)
	assert.True(t, mtime.Equal(s.ModTime("src/a.cpp")))
	assert.True(t, mtime.Equal(s.ModTime(filepath.Join(root, "src", "a.cpp"))))
	assert.True(t, s.ModTime("./missing.h").IsZero())
}

func TestStamps_ReadsOncePerRun(t *testing.T) {
	root := t.TempDir()
	mtime := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	writeFile(t, root, "a.h", mtime)

	var reads atomic.Int32
	s := NewStamps(root)
	s.stat = func(name string) (os.FileInfo, error) {
		reads.Add(1)
		return os.Stat(name)
	}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ModTime("./a.h")
		}()
	}
	wg.Wait()

	// later changes are not seen within the same run
	touch(t, root, "a.h", mtime.Add(time.Hour))
	assert.True(t, mtime.Equal(s.ModTime("./a.h")))
	assert.Equal(t, int32(1), reads.Load())
}

func TestStamps_Newest(t *testing.T) {
	root := t.TempDir()
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)
	writeFile(t, root, "old", old)
	writeFile(t, root, "recent", recent)

	s := NewStamps(root)
	assert.True(t, recent.Equal(s.Newest("old", "", "recent", "missing")))
	assert.True(t, s.Newest().IsZero())
}
