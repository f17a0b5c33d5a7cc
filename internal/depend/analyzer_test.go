package depend

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/ice/internal/compiler"
)

func newAnalyzer(root string, tc Toolchain, store RecordStore, runner Runner) *Analyzer {
	e := NewExtractor("g++", root, tc, runner, 3, quietLogger())
	c := NewCache(store, e, NewStamps(root), quietLogger())
	return NewAnalyzer(c, e, 2, quietLogger())
}

func writeSources(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		writeFile(t, root, n, time.Now().Add(-time.Hour))
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a.cpp", "b.cpp", "src/c.cpp")

	runner := &fakeRunner{run: rules(map[string]string{
		"./a.cpp":   "a.cpp a.h common.h",
		"./b.cpp":   "b.cpp common.h",
		"src/c.cpp": "src/c.cpp",
	})}
	a := newAnalyzer(root, &fakeToolchain{}, newMemStore(), runner)

	g, err := a.Analyze(context.Background(), []string{"a.cpp", "./b.cpp", "src/c.cpp"})
	require.NoError(t, err)

	assert.Equal(t, []string{"./a.cpp", "./b.cpp", "src/c.cpp"}, g.Sources)
	assert.Equal(t, []string{"./a.cpp", "./a.h", "./common.h"}, g.Dependencies["./a.cpp"])
	assert.Equal(t, []string{"./a.cpp", "./b.cpp"}, g.Parents["./common.h"])
	assert.Equal(t, []string{"./a.cpp"}, g.Parents["./a.h"])
	assert.Equal(t, []string{"./a.cpp", "./a.h", "./b.cpp", "./common.h", "src/c.cpp"}, g.Files())

	for _, s := range g.Sources {
		assert.Contains(t, g.Dependencies[s], s)
	}
}

func TestAnalyzer_UsesCacheAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a.cpp", "b.cpp")

	store := newMemStore()
	runner := &fakeRunner{run: rules(map[string]string{"./a.cpp": "a.cpp", "./b.cpp": "b.cpp"})}

	_, err := newAnalyzer(root, &fakeToolchain{}, store, runner).Analyze(context.Background(), []string{"a.cpp", "b.cpp"})
	require.NoError(t, err)

	_, err = newAnalyzer(root, &fakeToolchain{}, store, runner).Analyze(context.Background(), []string{"a.cpp", "b.cpp"})
	require.NoError(t, err)

	assert.Equal(t, 1, runner.count("./a.cpp"))
	assert.Equal(t, 1, runner.count("./b.cpp"))
}

func TestAnalyzer_RemedyTriggersSecondPass(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "gui.cpp", "core.cpp")

	tc := &fakeToolchain{}
	runner := &fakeRunner{}
	runner.run = func(c *compiler.ShellCommand) (string, string, error) {
		if c.Path == "wx-config" {
			return "-DWX\n", "", nil
		}

		file := c.Args[len(c.Args)-1]
		if file == "./gui.cpp" && !slices.Contains(tc.CompilerOptions(), "-DWX") {
			return "", wxOutput, inclusionError
		}

		return "x.o: " + file + "\n", "", nil
	}

	g, err := newAnalyzer(root, tc, newMemStore(), runner).Analyze(context.Background(), []string{"gui.cpp", "core.cpp"})
	require.NoError(t, err)

	assert.Equal(t, []string{"./gui.cpp"}, g.Dependencies["./gui.cpp"])
	assert.Equal(t, 2, runner.count("./gui.cpp"))

	// options changed, so files resolved in the first pass are redone
	assert.Equal(t, 2, runner.count("./core.cpp"))
	assert.Equal(t, []string{"-DWX"}, tc.linkOpts)
}

func TestAnalyzer_RetryOnlyFailedWithoutRemedy(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a.cpp", "b.cpp")

	var failures int
	runner := &fakeRunner{}
	runner.run = func(c *compiler.ShellCommand) (string, string, error) {
		file := c.Args[len(c.Args)-1]
		if file == "./a.cpp" && failures == 0 {
			failures++
			return "", "In file included from a.cpp:1:\n/gone/x.h: No such file or directory\n", inclusionError
		}

		return "x.o: " + file + "\n", "", nil
	}

	_, err := newAnalyzer(root, &fakeToolchain{}, newMemStore(), runner).Analyze(context.Background(), []string{"a.cpp", "b.cpp"})
	require.NoError(t, err)

	assert.Equal(t, 2, runner.count("./a.cpp"))
	assert.Equal(t, 1, runner.count("./b.cpp"))
}

func TestAnalyzer_ExhaustedRetries(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a.cpp")

	runner := &fakeRunner{run: func(c *compiler.ShellCommand) (string, string, error) {
		return "", "In file included from a.cpp:1:\nnope.h: No such file or directory\n", inclusionError
	}}

	_, err := newAnalyzer(root, &fakeToolchain{}, newMemStore(), runner).Analyze(context.Background(), []string{"a.cpp"})
	require.Error(t, err)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 3, extErr.Attempts)
	assert.Equal(t, 3, runner.count("./a.cpp"))
}

func TestAnalyzer_FatalAborts(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a.cpp")

	runner := &fakeRunner{run: func(c *compiler.ShellCommand) (string, string, error) {
		return "", "", errors.New("exec: \"g++\": executable file not found in $PATH")
	}}

	_, err := newAnalyzer(root, &fakeToolchain{}, newMemStore(), runner).Analyze(context.Background(), []string{"a.cpp"})

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 1, extErr.Attempts)
	assert.Contains(t, err.Error(), "executable file not found")
}

func TestAnalyzer_Empty(t *testing.T) {
	a := newAnalyzer(t.TempDir(), &fakeToolchain{}, newMemStore(), &fakeRunner{})

	g, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, g.Sources)
	assert.Empty(t, g.Files())
}
