// Package depend works out which files each source file depends on and
// which sources must be recompiled.
//
// The Extractor asks the compiler for one file's include list. The Cache
// keeps those lists across builds and re-extracts only when a record can
// no longer be trusted. The Analyzer runs extraction for a whole project
// on a bounded worker pool and applies header remedies between passes, so
// option lists never change while extraction is in flight. OutOfDate then
// compares object files against the dependency lists.
package depend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Norgate-AV/ice/internal/codes"
	"github.com/Norgate-AV/ice/internal/compiler"
)

// Status tags the outcome of one extraction attempt
type Status int

const (
	// Resolved means Dependencies is complete
	Resolved Status = iota

	// Retryable means headers were missing that a remedy may provide
	Retryable

	// Fatal means the compiler failed in a way no retry can fix
	Fatal
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of one extraction attempt
type Result struct {
	File   string
	Status Status

	// Set when Resolved
	Dependencies []string

	// Set when Retryable: base names of the headers that were missing
	Missing []string

	// Compiler output explaining a Retryable or Fatal result
	Output string
	Err    error
}

func (r Result) failure(attempts int) error {
	return &ExtractionError{File: r.File, Attempts: attempts, Output: r.Output, Err: r.Err}
}

// ExtractionError reports a file whose dependencies could not be computed
type ExtractionError struct {
	File     string
	Attempts int
	Output   string
	Err      error
}

func (e *ExtractionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot compute dependencies of %s", e.File)

	if e.Attempts > 1 {
		fmt.Fprintf(&sb, " after %d attempts", e.Attempts)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}

	if out := strings.TrimSpace(e.Output); out != "" {
		sb.WriteString("\n")
		sb.WriteString(out)
	}

	return sb.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) ExitCode() int { return codes.Dependency }

// Runner runs a command and captures its output
type Runner interface {
	Capture(ctx context.Context, c *compiler.ShellCommand) (stdout, stderr []byte, err error)
}

// Toolchain is the part of the build state extraction reads and, through
// remedies, extends
type Toolchain interface {
	compiler.Toolchain
	AddCompilerOptions(opts ...string)
	AddLinkerOptions(opts ...string)
}

// Extractor computes the dependencies of single files with the compiler
type Extractor struct {
	compiler  string
	dir       string
	toolchain Toolchain
	runner    Runner
	attempts  int
	remedies  map[string]Remedy
	logger    *log.Logger

	mu      sync.Mutex
	applied map[string]bool
}

// NewExtractor creates an extractor that runs compilerPath in dir.
// attempts bounds how often one file is tried; less than one means one.
func NewExtractor(compilerPath, dir string, tc Toolchain, runner Runner, attempts int, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}

	e := &Extractor{
		compiler:  compilerPath,
		dir:       dir,
		toolchain: tc,
		runner:    runner,
		attempts:  max(attempts, 1),
		remedies:  make(map[string]Remedy),
		logger:    logger,
		applied:   make(map[string]bool),
	}

	for _, r := range DefaultRemedies {
		e.remedies[r.Header] = r
	}

	return e
}

// Attempts returns how often one file may be tried
func (e *Extractor) Attempts() int {
	return e.attempts
}

// Attempt runs the compiler once for file
func (e *Extractor) Attempt(ctx context.Context, file string) Result {
	cmd := compiler.GetDependencyCommand(e.compiler, e.toolchain, file)
	cmd.Dir = e.dir

	stdout, stderr, err := e.runner.Capture(ctx, cmd)
	if err != nil {
		output := string(stderr)
		if IsInclusionError(output, file) {
			return Result{File: file, Status: Retryable, Missing: MissingHeaders(output, file), Output: output}
		}

		return Result{File: file, Status: Fatal, Output: output, Err: err}
	}

	deps := ParseRule(stdout)
	if len(deps) == 0 {
		return Result{
			File:   file,
			Status: Fatal,
			Output: string(stderr) + string(stdout),
			Err:    errors.New("compiler printed no dependency rule"),
		}
	}

	return Result{File: file, Status: Resolved, Dependencies: normalizeAll(file, deps)}
}

// Extract computes the dependencies of file, applying remedies and trying
// again while headers are missing, up to the attempt bound. Analyzer runs
// the same loop for many files at once.
func (e *Extractor) Extract(ctx context.Context, file string) ([]string, error) {
	var r Result
	for attempt := 1; attempt <= e.attempts; attempt++ {
		r = e.Attempt(ctx, file)

		switch r.Status {
		case Resolved:
			return r.Dependencies, nil
		case Fatal:
			return nil, r.failure(attempt)
		}

		if attempt < e.attempts {
			e.logger.Info("There were some errors computing dependencies. Attempting to recover.",
				"file", file, "attempt", attempt, "missing", r.Missing)
			e.ApplyRemedies(ctx, r.Missing)
		}
	}

	return nil, r.failure(e.attempts)
}

// ApplyRemedies runs the remedy for each missing header that has one and
// has not been applied yet, and appends the flags it prints to the
// toolchain's options. It reports whether any option changed. Calls are
// serialized.
func (e *Extractor) ApplyRemedies(ctx context.Context, missing []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	for _, header := range missing {
		r, ok := e.remedies[header]
		if !ok || e.applied[header] {
			continue
		}

		e.applied[header] = true
		e.logger.Info(r.Name+" detected", "header", header)

		if flags := e.flags(ctx, r.CompileFlags); len(flags) > 0 {
			e.toolchain.AddCompilerOptions(flags...)
			changed = true
		}

		if flags := e.flags(ctx, r.LinkFlags); len(flags) > 0 {
			e.toolchain.AddLinkerOptions(flags...)
			changed = true
		}
	}

	return changed
}

func (e *Extractor) flags(ctx context.Context, argv []string) []string {
	if len(argv) == 0 {
		return nil
	}

	stdout, _, err := e.runner.Capture(ctx, &compiler.ShellCommand{Path: argv[0], Args: argv[1:], Dir: e.dir})
	if err != nil {
		e.logger.Warn("remedy failed", "command", strings.Join(argv, " "), "err", err)
		return nil
	}

	return strings.Fields(string(stdout))
}
