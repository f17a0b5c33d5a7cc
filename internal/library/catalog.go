package library

import (
	"slices"
	"sync"
)

// Catalog layers libraries discovered during a build over an immutable
// Registry. Discovered libraries carry no ordering information of their
// own, so they sort ahead of every registry library.
type Catalog struct {
	base *Registry

	mu       sync.RWMutex
	extended map[string]*Library
	byHeader map[string][]string
	bySymbol map[string][]string
}

// NewCatalog creates an empty extension table over base
func NewCatalog(base *Registry) *Catalog {
	return &Catalog{
		base:     base,
		extended: make(map[string]*Library),
		byHeader: make(map[string][]string),
		bySymbol: make(map[string][]string),
	}
}

// Registry returns the immutable base registry
func (c *Catalog) Registry() *Registry {
	return c.base
}

// Define adds a discovered library. Its name must not exist in the base
// registry or among previously discovered libraries.
func (c *Catalog) Define(lib Library) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.base.libraries[lib.Name]; ok {
		return &DuplicateError{Name: lib.Name}
	}

	if _, ok := c.extended[lib.Name]; ok {
		return &DuplicateError{Name: lib.Name}
	}

	c.extended[lib.Name] = &lib
	index(c.byHeader, lib.Headers, lib.Name)
	index(c.bySymbol, lib.Symbols, lib.Name)

	return nil
}

// Lookup finds a library in the base registry or the extension table
func (c *Catalog) Lookup(name string) (Library, bool) {
	if lib, ok := c.base.Lookup(name); ok {
		return lib, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	lib, ok := c.extended[name]
	if !ok {
		return Library{}, false
	}

	return *lib, true
}

// Has reports whether name is known
func (c *Catalog) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// ForHeader returns the libraries implied by header from both tables
func (c *Catalog) ForHeader(header string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return merge(c.base.ForHeader(header), c.byHeader[baseName(header)])
}

// ForSymbol returns the libraries implied by symbol from both tables
func (c *Catalog) ForSymbol(symbol string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return merge(c.base.ForSymbol(symbol), c.bySymbol[symbol])
}

// Closure returns names together with every library they transitively
// depend on. Unknown names are kept as they are.
func (c *Catalog) Closure(names []string) []string {
	var out []string
	seen := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if seen[name] {
			return
		}

		seen[name] = true
		out = append(out, name)

		if lib, ok := c.Lookup(name); ok {
			for _, dep := range lib.DependsOn {
				visit(dep)
			}
		}
	}

	for _, name := range names {
		visit(name)
	}

	return out
}

// Sort reorders names in place into link order
func (c *Catalog) Sort(names []string) {
	c.base.Sort(names)
}

func merge(a, b []string) []string {
	out := slices.Clone(a)
	for _, name := range b {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	return out
}
