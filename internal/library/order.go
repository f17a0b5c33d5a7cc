package library

import (
	"cmp"
	"slices"
)

// topologicalOrder returns every library named in pairs so that each
// Before precedes its After. Among libraries that are free to go next the
// alphabetically first is taken, so the result only depends on the pairs.
func topologicalOrder(pairs []Pair) ([]string, error) {
	successors := make(map[string][]string)
	indegree := make(map[string]int)

	for _, p := range pairs {
		if _, ok := indegree[p.Before]; !ok {
			indegree[p.Before] = 0
		}

		if _, ok := indegree[p.After]; !ok {
			indegree[p.After] = 0
		}

		if slices.Contains(successors[p.Before], p.After) {
			continue
		}

		successors[p.Before] = append(successors[p.Before], p.After)
		indegree[p.After]++
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		slices.Sort(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, next := range successors[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(indegree) {
		return nil, &CycleError{Cycle: findCycle(successors, indegree)}
	}

	return order, nil
}

// findCycle returns one cycle among the libraries Kahn's algorithm could
// not place, starting and ending at the same name
func findCycle(successors map[string][]string, indegree map[string]int) []string {
	var stuck []string
	for name, n := range indegree {
		if n > 0 {
			stuck = append(stuck, name)
		}
	}

	slices.Sort(stuck)

	// depth first search with temporary marks for the current path and
	// permanent marks for nodes known not to lead back into it
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		if permanent[name] {
			return nil
		}

		if temporary[name] {
			start := slices.Index(path, name)
			return append(slices.Clone(path[start:]), name)
		}

		temporary[name] = true
		path = append(path, name)

		next := slices.Clone(successors[name])
		slices.Sort(next)
		for _, n := range next {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		delete(temporary, name)
		permanent[name] = true

		return nil
	}

	for _, name := range stuck {
		if cycle := visit(name); cycle != nil {
			return cycle
		}
	}

	return stuck
}

// Compare orders two canonical names for the linker. Names without order
// information come first, since no known library can depend on them; two
// such names compare alphabetically.
func (r *Registry) Compare(x, y string) int {
	px, hasX := r.position[x]
	py, hasY := r.position[y]

	switch {
	case hasX && hasY:
		return cmp.Compare(px, py)
	case hasX:
		return 1
	case hasY:
		return -1
	}

	return cmp.Compare(x, y)
}

// Sort reorders names in place into link order
func (r *Registry) Sort(names []string) {
	slices.SortStableFunc(names, r.Compare)
}
