// Package sibling finds library projects next to the current one that
// provide headers the include path does not.
//
// A header that cannot be found on the include path may live under the
// include/ directory of an adjacent library project (foo.lib, bar.so, ...).
// When one is found the build starts using it: its include directory and
// output directory join the search paths and it is linked.
package sibling

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Norgate-AV/ice/internal/config"
	"github.com/Norgate-AV/ice/internal/library"
	"github.com/Norgate-AV/ice/internal/state"
	"github.com/Norgate-AV/ice/internal/utils"
)

// Candidate is an adjacent directory that builds a library
type Candidate struct {
	Dir  string
	Name string
	Kind utils.ArtifactKind
}

// Dirs lists the library directories next to root and next to each of its
// ancestors, up to depth levels, nearest first. root and its ancestors are
// not candidates.
func Dirs(root string, depth int) []Candidate {
	var out []Candidate

	child := filepath.Clean(root)
	parent := filepath.Dir(child)
	for level := 0; level < depth; level++ {
		entries, _ := os.ReadDir(parent)
		for _, e := range entries {
			dir := filepath.Join(parent, e.Name())
			if dir == child || !isDir(e, dir) {
				continue
			}

			name, kind := utils.ClassifyArtifact(e.Name())
			if kind.IsLibrary() {
				out = append(out, Candidate{Dir: dir, Name: name, Kind: kind})
			}
		}

		if filepath.Dir(parent) == parent {
			break
		}

		child, parent = parent, filepath.Dir(parent)
	}

	return out
}

func isDir(e os.DirEntry, path string) bool {
	if e.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	}

	return e.IsDir()
}

// Warner shows throttled warnings
type Warner interface {
	Warn(text string, keyvals ...any) bool
}

// ConfigResolver loads the configuration of the project rooted at dir
type ConfigResolver func(dir string) (*config.Config, error)

// Resolution records a header found in a sibling project
type Resolution struct {
	Header  string
	Dir     string
	Library string
}

// Resolver widens the build's search paths with sibling projects
type Resolver struct {
	state   *state.State
	catalog *library.Catalog
	warner  Warner
	logger  *log.Logger
	depth   int

	// Resolve loads a sibling's configuration, config.Resolve by default
	Resolve ConfigResolver
}

// NewResolver creates a resolver searching depth parent levels
func NewResolver(st *state.State, catalog *library.Catalog, depth int, warner Warner, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}

	return &Resolver{
		state:   st,
		catalog: catalog,
		warner:  warner,
		logger:  logger,
		depth:   depth,
		Resolve: config.Resolve,
	}
}

// ResolveHeaders looks for every header that is not on the include path
// in the sibling library projects, and returns the ones it found there.
// parents maps a header to the sources that include it, for the log.
//
// A header that already lies inside a sibling's include directory, as
// recorded dependencies do once a sibling was found, makes the build use
// that sibling too. Headers found nowhere produce a throttled warning;
// they are not an error, since the compiler may still find them in places
// not modelled here.
func (r *Resolver) ResolveHeaders(headers []string, parents map[string][]string) []Resolution {
	candidates := Dirs(r.state.RootDir, r.depth)
	searchPath := r.searchPath()

	var resolved []Resolution
	for _, header := range headers {
		if c, ok := r.owner(candidates, header); ok {
			r.use(c, header, parents[header])
			continue
		}

		if onPath(searchPath, header) {
			continue
		}

		found := false
		for _, c := range candidates {
			if !exists(filepath.Join(c.Dir, "include", filepath.FromSlash(header))) {
				continue
			}

			found = true
			r.logger.Debug("Found '" + header + "' in '" + c.Dir + "/include'.")

			r.use(c, header, parents[header])
			resolved = append(resolved, Resolution{Header: header, Dir: c.Dir, Library: c.Name})

			// the include path changed
			searchPath = r.searchPath()
			break
		}

		if !found {
			r.warner.Warn("Header file not found: '" + header + "'.")
		}
	}

	return resolved
}

// AddProject makes the build use the project in dir, as if one of its
// headers had been found. Directories that do not build a library only
// contribute their include directory.
func (r *Resolver) AddProject(dir string) {
	dir = filepath.Clean(r.state.Resolve(dir))
	name, kind := utils.ClassifyArtifact(dir)
	r.use(Candidate{Dir: dir, Name: name, Kind: kind}, "", nil)
}

// owner returns the candidate whose include directory contains header
func (r *Resolver) owner(candidates []Candidate, header string) (Candidate, bool) {
	path := filepath.Clean(r.state.Resolve(filepath.FromSlash(header)))

	for _, c := range candidates {
		rel, err := filepath.Rel(filepath.Join(c.Dir, "include"), path)
		if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return c, true
		}
	}

	return Candidate{}, false
}

func (r *Resolver) use(c Candidate, header string, includers []string) {
	if c.Kind.IsLibrary() {
		if !r.define(c, header) {
			return
		}

		r.state.AddUsedLibrary(c.Name)
	}

	if !r.state.AddUsedProject(c.Dir) {
		return
	}

	if header != "" {
		by := ""
		if len(includers) > 0 {
			by = includers[0]
		}

		r.logger.Info("Detected dependency on "+c.Dir+" from inclusion of "+header, "by", by)
	}

	r.state.AddIncludePath(filepath.Join(c.Dir, "include"))

	other, err := r.Resolve(c.Dir)
	if err != nil {
		r.logger.Warn("cannot load sibling project configuration", "dir", c.Dir, "err", err)
		return
	}

	r.state.AddLibraryPath(other.BinaryDir)
}

// define adds a minimal catalog entry for a sibling library unless the
// name is already known
func (r *Resolver) define(c Candidate, header string) bool {
	if r.catalog.Has(c.Name) {
		return true
	}

	kind := library.Static
	if c.Kind == utils.DynamicLibrary {
		kind = library.Dynamic
	}

	lib := library.Library{
		Name:       c.Name,
		Kind:       kind,
		ReleaseLib: c.Name,
		DebugLib:   c.Name + "d",
	}
	if header != "" {
		lib.Headers = []string{utils.BaseName(header)}
	}

	if err := r.catalog.Define(lib); err != nil {
		r.logger.Warn("cannot define sibling library", "name", c.Name, "err", err)
		return false
	}

	return true
}

// searchPath is the include path with the project root first, which also
// finds absolute names
func (r *Resolver) searchPath() []string {
	return append([]string{r.state.RootDir}, r.state.IncludePaths()...)
}

func onPath(searchPath []string, header string) bool {
	header = filepath.FromSlash(header)
	if filepath.IsAbs(header) {
		return exists(header)
	}

	for _, dir := range searchPath {
		if exists(filepath.Join(dir, header)) {
			return true
		}
	}

	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
