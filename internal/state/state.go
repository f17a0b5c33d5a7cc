// Package state holds the mutable per-invocation build context: the
// compiler, its option lists, the include and library search paths and the
// libraries and sibling projects the build uses.
//
// Search paths are ordered, de-duplicated and existence-checked when added.
// Option lists only ever grow. All methods are safe for concurrent use, but
// callers that change options or paths while dependency extraction is in
// flight get results that depend on timing; the pipeline only mutates a
// State between extraction passes.
package state

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Norgate-AV/ice/internal/config"
	"github.com/Norgate-AV/ice/internal/utils"
)

// State is the build context for one invocation
type State struct {
	RootDir   string
	Compiler  string
	Target    utils.Target
	GOOS      string
	ObjDir    string
	BinaryDir string

	mu              sync.RWMutex
	compilerOptions []string
	linkerOptions   []string
	includePaths    []string
	libraryPaths    []string
	usesLibraries   []string
	usesProjects    []string
}

// New creates the build context for cfg. Include and library paths from the
// configuration that do not exist are dropped.
func New(cfg *config.Config) *State {
	s := &State{
		RootDir:         cfg.RootDir,
		Compiler:        cfg.Compiler,
		Target:          cfg.Target,
		GOOS:            cfg.GOOS,
		ObjDir:          cfg.ObjDir,
		BinaryDir:       cfg.BinaryDir,
		compilerOptions: slices.Clone(cfg.CompileOptions),
		linkerOptions:   slices.Clone(cfg.LinkOptions),
	}

	// a library exposes its own headers to itself
	if cfg.BinaryKind.IsLibrary() {
		s.AddIncludePath(filepath.Join(cfg.RootDir, "include"))
		s.AddIncludePath(filepath.Join(cfg.RootDir, "include", cfg.ProjectName))
	}

	for _, p := range cfg.IncludePaths {
		s.AddIncludePath(p)
	}

	for _, p := range cfg.LibraryPaths {
		s.AddLibraryPath(p)
	}

	return s
}

// CompilerOptions returns a copy of the compiler option list
func (s *State) CompilerOptions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.compilerOptions)
}

// AddCompilerOptions appends options for every later compile
func (s *State) AddCompilerOptions(opts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compilerOptions = append(s.compilerOptions, opts...)
}

// LinkerOptions returns a copy of the linker option list
func (s *State) LinkerOptions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.linkerOptions)
}

// AddLinkerOptions appends options for the final link
func (s *State) AddLinkerOptions(opts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkerOptions = append(s.linkerOptions, opts...)
}

// IncludePaths returns a copy of the include search path
func (s *State) IncludePaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.includePaths)
}

// AddIncludePath appends path if it exists and is not already present.
// It reports whether the list changed.
func (s *State) AddIncludePath(path string) bool {
	return s.addPath(&s.includePaths, path)
}

// LibraryPaths returns a copy of the library search path
func (s *State) LibraryPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.libraryPaths)
}

// AddLibraryPath appends path if it exists and is not already present.
// It reports whether the list changed.
func (s *State) AddLibraryPath(path string) bool {
	return s.addPath(&s.libraryPaths, path)
}

// UsesLibraries returns the canonical names of directly used libraries
func (s *State) UsesLibraries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.usesLibraries)
}

// AddUsedLibrary records a library the build links against. It reports
// whether the name was new.
func (s *State) AddUsedLibrary(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.usesLibraries, name) {
		return false
	}

	s.usesLibraries = append(s.usesLibraries, name)
	return true
}

// UsesProjects returns the sibling project directories the build uses
func (s *State) UsesProjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.usesProjects)
}

// AddUsedProject records a sibling project directory. It reports whether
// the directory was new.
func (s *State) AddUsedProject(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.usesProjects, dir) {
		return false
	}

	s.usesProjects = append(s.usesProjects, dir)
	return true
}

// Resolve makes a root-relative path absolute
func (s *State) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(s.RootDir, path)
}

func (s *State) addPath(list *[]string, path string) bool {
	if path == "" {
		return false
	}

	path = filepath.Clean(s.Resolve(path))
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(*list, path) {
		return false
	}

	*list = append(*list, path)
	return true
}
