package depend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/ice/internal/cache"
	"github.com/Norgate-AV/ice/internal/compiler"
)

// fakeRunner answers commands with run and records every call
type fakeRunner struct {
	mu    sync.Mutex
	calls []*compiler.ShellCommand
	run   func(c *compiler.ShellCommand) (stdout, stderr string, err error)
}

func (f *fakeRunner) Capture(ctx context.Context, c *compiler.ShellCommand) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	stdout, stderr, err := f.run(c)
	return []byte(stdout), []byte(stderr), err
}

// count returns how many dependency commands were run for file
func (f *fakeRunner) count(file string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c.Path == "g++" && c.Args[len(c.Args)-1] == file {
			n++
		}
	}

	return n
}

// rules returns a run func printing a fixed make rule per file
func rules(deps map[string]string) func(c *compiler.ShellCommand) (string, string, error) {
	return func(c *compiler.ShellCommand) (string, string, error) {
		file := c.Args[len(c.Args)-1]
		return "obj.o: " + deps[file] + "\n", "", nil
	}
}

type fakeToolchain struct {
	mu          sync.Mutex
	compileOpts []string
	linkOpts    []string
	includes    []string
}

func (f *fakeToolchain) CompilerOptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.compileOpts...)
}

func (f *fakeToolchain) IncludePaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.includes...)
}

func (f *fakeToolchain) AddCompilerOptions(opts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compileOpts = append(f.compileOpts, opts...)
}

func (f *fakeToolchain) AddLinkerOptions(opts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkOpts = append(f.linkOpts, opts...)
}

type memStore struct {
	mu      sync.Mutex
	records map[string]cache.Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]cache.Record)}
}

func (m *memStore) Record(file string) (cache.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[file]
	return rec, ok
}

func (m *memStore) PutRecord(rec cache.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.File] = rec
}

func (m *memStore) DeleteRecord(file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, file)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeFile creates root/name with the given modification time
func writeFile(t *testing.T, root, name string, mtime time.Time) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("// "+name+"\n"), 0o644))
	touch(t, root, name, mtime)
}

func touch(t *testing.T, root, name string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(filepath.Join(root, filepath.FromSlash(name)), mtime, mtime))
}

var inclusionError = &compiler.ExitError{Command: "g++", Code: 1}
