package depend

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Stamps memoizes file modification times for one build, so each file is
// read from disk at most once however many sources depend on it
type Stamps struct {
	root string
	stat func(name string) (os.FileInfo, error)

	group singleflight.Group
	mu    sync.Mutex
	times map[string]time.Time
}

// NewStamps creates a memo resolving relative paths against root
func NewStamps(root string) *Stamps {
	return &Stamps{
		root:  root,
		stat:  os.Stat,
		times: make(map[string]time.Time),
	}
}

// ModTime returns the modification time of path, or the zero time if it
// does not exist
func (s *Stamps) ModTime(path string) time.Time {
	if t, ok := s.lookup(path); ok {
		return t
	}

	v, _, _ := s.group.Do(path, func() (any, error) {
		if t, ok := s.lookup(path); ok {
			return t, nil
		}

		var t time.Time
		if info, err := s.stat(s.resolve(path)); err == nil {
			t = info.ModTime()
		}

		s.mu.Lock()
		s.times[path] = t
		s.mu.Unlock()

		return t, nil
	})

	return v.(time.Time)
}

// Newest returns the latest modification time among paths
func (s *Stamps) Newest(paths ...string) time.Time {
	var newest time.Time
	for _, p := range paths {
		if p == "" {
			continue
		}

		if t := s.ModTime(p); t.After(newest) {
			newest = t
		}
	}

	return newest
}

func (s *Stamps) lookup(path string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.times[path]
	return t, ok
}

func (s *Stamps) resolve(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(s.root, path)
}
