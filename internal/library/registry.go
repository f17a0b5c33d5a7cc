// Package library describes the third-party and sibling libraries a build
// can link against and decides the order they are presented to the linker.
//
// A Registry is built once from static data and never changes afterwards.
// Libraries discovered while building (sibling projects) go into a Catalog,
// which layers a mutable extension table over an immutable Registry.
package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Norgate-AV/ice/internal/codes"
)

// Kind is how a library is linked
type Kind int

const (
	Static Kind = iota + 1
	Dynamic
	Framework
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Framework:
		return "framework"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Library describes one linkable library
type Library struct {
	// Canonical name, unique within a registry
	Name string

	// Static or Dynamic. Framework when it only exists as an OS X framework.
	Kind Kind

	// Artifact base names passed to the linker, e.g. "G3D" and "G3Dd"
	ReleaseLib string
	DebugLib   string

	// OS X framework names, empty if there is no framework. A framework
	// is preferred on darwin.
	ReleaseFramework string
	DebugFramework   string

	// Headers whose inclusion means the library must be linked
	Headers []string

	// Unresolved symbols that mean the library must be linked. This finds
	// dependencies of static libraries that headers do not reveal.
	Symbols []string

	// Canonical names of the libraries this one depends on
	DependsOn []string

	// Whether a deployed program ships this library alongside it
	Deploy bool
}

// Pair says that library Before must be presented to the linker ahead of
// library After
type Pair struct {
	Before string
	After  string
}

// DuplicateError reports a library defined twice
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("library %q defined twice", e.Name)
}

func (e *DuplicateError) ExitCode() int { return codes.Configuration }

// CycleError reports link ordering constraints that contradict each other
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("library link order has a cycle: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) ExitCode() int { return codes.Configuration }

// Registry is an immutable table of libraries plus the link order derived
// from their dependencies and the precedence pairs it was built with
type Registry struct {
	libraries map[string]*Library
	byHeader  map[string][]string
	bySymbol  map[string][]string
	order     []string
	position  map[string]int
}

// NewRegistry builds a registry. It fails if a name is defined twice or if
// the dependency edges merged with precedence form a cycle.
func NewRegistry(libs []Library, precedence []Pair) (*Registry, error) {
	r := &Registry{
		libraries: make(map[string]*Library, len(libs)),
		byHeader:  make(map[string][]string),
		bySymbol:  make(map[string][]string),
	}

	for i := range libs {
		lib := libs[i]
		if _, ok := r.libraries[lib.Name]; ok {
			return nil, &DuplicateError{Name: lib.Name}
		}

		r.libraries[lib.Name] = &lib
		index(r.byHeader, lib.Headers, lib.Name)
		index(r.bySymbol, lib.Symbols, lib.Name)
	}

	pairs := slices.Clone(precedence)
	for _, name := range r.Names() {
		for _, dep := range r.libraries[name].DependsOn {
			pairs = append(pairs, Pair{Before: name, After: dep})
		}
	}

	order, err := topologicalOrder(pairs)
	if err != nil {
		return nil, err
	}

	r.order = order
	r.position = make(map[string]int, len(order))
	for i, name := range order {
		r.position[name] = i
	}

	return r, nil
}

func index(table map[string][]string, keys []string, name string) {
	for _, k := range keys {
		if !slices.Contains(table[k], name) {
			table[k] = append(table[k], name)
		}
	}
}

// Lookup returns the library with the given canonical name
func (r *Registry) Lookup(name string) (Library, bool) {
	lib, ok := r.libraries[name]
	if !ok {
		return Library{}, false
	}

	return *lib, true
}

// Names returns every canonical name in alphabetical order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

// ForHeader returns the libraries implied by including header. Only the
// base name of header is considered.
func (r *Registry) ForHeader(header string) []string {
	return slices.Clone(r.byHeader[baseName(header)])
}

// ForSymbol returns the libraries implied by an unresolved symbol
func (r *Registry) ForSymbol(symbol string) []string {
	return slices.Clone(r.bySymbol[symbol])
}

// Order returns every library that has ordering information, in link order
func (r *Registry) Order() []string {
	return slices.Clone(r.order)
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	return path[i+1:]
}
