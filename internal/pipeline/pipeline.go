// Package pipeline runs one build invocation: dependency analysis, sibling
// discovery, staleness, compilation of stale files and link ordering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Norgate-AV/ice/internal/codes"
	"github.com/Norgate-AV/ice/internal/compiler"
	"github.com/Norgate-AV/ice/internal/config"
	"github.com/Norgate-AV/ice/internal/depend"
	"github.com/Norgate-AV/ice/internal/fsutil"
	"github.com/Norgate-AV/ice/internal/library"
	"github.com/Norgate-AV/ice/internal/sibling"
	"github.com/Norgate-AV/ice/internal/state"
	"github.com/Norgate-AV/ice/internal/warn"
)

// maxSiblingPasses bounds how often analysis is repeated because sibling
// discovery changed the include path
const maxSiblingPasses = 3

// ErrNoSources is returned when a project has nothing to compile
var ErrNoSources = errors.New("no source files found")

// Store persists dependency records and warning timestamps
type Store interface {
	depend.RecordStore
	warn.Store
}

// Runner runs compiler commands
type Runner interface {
	depend.Runner
	ExecuteCommand(ctx context.Context, c *compiler.ShellCommand) error
}

// CompileError reports sources that failed to compile
type CompileError struct {
	Failed []string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d file(s) failed to compile: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *CompileError) ExitCode() int { return codes.Compile }

// Options adjust one invocation
type Options struct {
	// Ignore stored dependency records, recomputing every list
	NoCache bool

	// Work out what is stale without compiling
	DryRun bool

	// The build tool binary whose time counts toward freshness. Empty
	// means the running executable.
	Executable string

	Logger *log.Logger
}

// Report is what one invocation found out
type Report struct {
	Project      string              `yaml:"project"`
	Target       string              `yaml:"target"`
	Sources      []string            `yaml:"sources"`
	Dependencies map[string][]string `yaml:"dependencies"`
	OutOfDate    []string            `yaml:"out_of_date"`
	Siblings     []string            `yaml:"siblings,omitempty"`
	Libraries    []string            `yaml:"libraries"`
	LinkFlags    []string            `yaml:"link_flags"`
	Compiled     []string            `yaml:"compiled,omitempty"`

	Graph *depend.Graph `yaml:"-"`
}

// Pipeline holds everything one invocation needs
type Pipeline struct {
	cfg      *config.Config
	state    *state.State
	catalog  *library.Catalog
	store    Store
	runner   Runner
	resolver *sibling.Resolver
	opts     Options
	logger   *log.Logger
}

// New prepares an invocation for cfg. It fails if the builtin library
// table is inconsistent.
func New(cfg *config.Config, store Store, runner Runner, opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	if opts.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			opts.Executable = exe
		}
	}

	registry, err := library.NewBuiltin(cfg.GOOS)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		state:   state.New(cfg),
		catalog: library.NewCatalog(registry),
		store:   store,
		runner:  runner,
		opts:    opts,
		logger:  logger,
	}

	throttler := warn.New(store, cfg.WarningWindow, logger)
	p.resolver = sibling.NewResolver(p.state, p.catalog, cfg.SiblingDepth, throttler, logger)

	for _, use := range cfg.Uses {
		p.use(use)
	}

	return p, nil
}

// State returns the build context
func (p *Pipeline) State() *state.State {
	return p.state
}

// Catalog returns the libraries known to this invocation
func (p *Pipeline) Catalog() *library.Catalog {
	return p.catalog
}

// use adds an entry of the project's uses list: a directory holding a
// project is a sibling project, anything else a library name
func (p *Pipeline) use(entry string) {
	dir := p.state.Resolve(entry)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		p.resolver.AddProject(dir)
		return
	}

	if !p.catalog.Has(entry) {
		p.logger.Debug("using library unknown to the registry", "name", entry)
	}

	p.state.AddUsedLibrary(entry)
}

// Analyze computes dependencies, discovers sibling projects, determines
// the out-of-date sources and orders the libraries to link
func (p *Pipeline) Analyze(ctx context.Context) (*Report, error) {
	sources, err := fsutil.ListSources(p.cfg.RootDir, fsutil.SourceOptions{
		Exclude: p.cfg.ExcludePattern(),
		Skip:    p.skipDirs(),
		GOOS:    p.cfg.GOOS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, p.cfg.RootDir)
	}

	p.logger.Debug("Source files found", "files", sources)

	stamps, extractor, deps := p.engine()
	analyzer := depend.NewAnalyzer(deps, extractor, p.cfg.Jobs, p.logger)

	if p.opts.NoCache {
		for _, s := range sources {
			deps.Invalidate(depend.Normalize(s))
		}
	}

	var graph *depend.Graph
	for pass := 1; ; pass++ {
		graph, err = analyzer.Analyze(ctx, sources)
		if err != nil {
			return nil, err
		}

		found := p.resolver.ResolveHeaders(graph.Files(), graph.Parents)
		if len(found) == 0 || pass == maxSiblingPasses {
			break
		}

		// the include path changed, so the lists that named these headers
		// are recomputed
		for _, r := range found {
			deps.Invalidate(graph.Parents[r.Header]...)
		}
	}

	freshness := stamps.Newest(p.opts.Executable, p.cfg.ProjectFile, p.cfg.PreferenceFile)
	stale := depend.OutOfDate(stamps, p.cfg.ObjDir, freshness, graph, p.logger)

	libs := p.libraries(graph)

	return &Report{
		Project:      p.cfg.ProjectName,
		Target:       string(p.cfg.Target),
		Sources:      graph.Sources,
		Dependencies: graph.Dependencies,
		OutOfDate:    stale,
		Siblings:     p.state.UsesProjects(),
		Libraries:    libs,
		LinkFlags:    p.linkFlags(libs),
		Graph:        graph,
	}, nil
}

// FileDependencies returns the dependency list of one file, using the
// stored record while it can be trusted, along with the file's name as
// the list records it
func (p *Pipeline) FileDependencies(ctx context.Context, file string) (string, []string, error) {
	if filepath.IsAbs(file) {
		rel, err := filepath.Rel(p.cfg.RootDir, file)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}

		file = rel
	}

	file = depend.Normalize(filepath.ToSlash(file))

	_, _, deps := p.engine()
	if p.opts.NoCache {
		deps.Invalidate(file)
	}

	list, err := deps.Dependencies(ctx, file)
	return file, list, err
}

func (p *Pipeline) engine() (*depend.Stamps, *depend.Extractor, *depend.Cache) {
	stamps := depend.NewStamps(p.cfg.RootDir)
	extractor := depend.NewExtractor(p.cfg.Compiler, p.cfg.RootDir, p.state, p.runner, p.cfg.DependencyAttempts, p.logger)

	return stamps, extractor, depend.NewCache(p.store, extractor, stamps, p.logger)
}

// Build analyzes the project and compiles every out-of-date source
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	report, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if len(report.OutOfDate) == 0 {
		p.logger.Info("Nothing to compile", "project", p.cfg.ProjectName)
		return report, nil
	}

	if p.opts.DryRun {
		for _, s := range report.OutOfDate {
			p.logger.Info("would compile", "file", s)
		}

		return report, nil
	}

	compiled, err := p.compile(ctx, report.OutOfDate)
	report.Compiled = compiled

	return report, err
}

func (p *Pipeline) compile(ctx context.Context, sources []string) ([]string, error) {
	var mu sync.Mutex
	var compiled, failed []string

	g, ctx := errgroup.WithContext(ctx)
	if p.cfg.Jobs > 0 {
		g.SetLimit(p.cfg.Jobs)
	} else {
		g.SetLimit(runtime.NumCPU())
	}

	for _, source := range sources {
		g.Go(func() error {
			object := depend.ObjectFilename(p.cfg.ObjDir, source)
			if err := os.MkdirAll(filepath.Dir(object), 0o755); err != nil {
				return fmt.Errorf("failed to create object directory: %w", err)
			}

			p.logger.Info("Compiling", "file", source)

			cmd := compiler.GetCompileCommand(p.cfg.Compiler, p.state, source, object)
			cmd.Dir = p.cfg.RootDir

			err := p.runner.ExecuteCommand(ctx, cmd)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				p.logger.Error("compile failed", "file", source, "err", err)
				failed = append(failed, source)
				return nil
			}

			compiled = append(compiled, source)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return compiled, err
	}

	slices.Sort(compiled)
	if len(failed) > 0 {
		slices.Sort(failed)
		return compiled, &CompileError{Failed: failed}
	}

	return compiled, nil
}

// libraries returns the libraries to link in link order: those the
// project uses plus those its headers imply, with everything they depend on
func (p *Pipeline) libraries(graph *depend.Graph) []string {
	names := p.state.UsesLibraries()

	for _, f := range graph.Files() {
		for _, name := range p.catalog.ForHeader(f) {
			if !slices.Contains(names, name) {
				p.logger.Debug("header implies library", "header", f, "library", name)
				names = append(names, name)
			}
		}
	}

	names = p.catalog.Closure(names)
	p.catalog.Sort(names)

	return names
}

func (p *Pipeline) linkFlags(libs []string) []string {
	var flags []string
	for _, dir := range p.state.LibraryPaths() {
		flags = append(flags, "-L"+dir)
	}

	flags = append(flags, p.catalog.LinkFlags(libs, p.cfg.Target, p.cfg.GOOS)...)
	return append(flags, p.state.LinkerOptions()...)
}

// skipDirs returns the output directories inside the project, relative to
// the root, which are never searched for sources
func (p *Pipeline) skipDirs() []string {
	var skip []string
	for _, dir := range []string{p.cfg.BuildDir, p.cfg.TempDir, p.cfg.CacheDir} {
		rel, err := filepath.Rel(p.cfg.RootDir, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}

		skip = append(skip, filepath.ToSlash(rel))
	}

	return skip
}
