package depend

import (
	"context"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Graph is the dependency information of a whole project
type Graph struct {
	// Source files, normalized, in the order they were analyzed
	Sources []string

	// Every file each source depends on, itself included
	Dependencies map[string][]string

	// The sources that depend on each file
	Parents map[string][]string
}

// Files returns every file some source depends on, sorted
func (g *Graph) Files() []string {
	files := make([]string, 0, len(g.Parents))
	for f := range g.Parents {
		files = append(files, f)
	}

	slices.Sort(files)
	return files
}

// Analyzer computes a Graph on a pool of workers
type Analyzer struct {
	cache     *Cache
	extractor *Extractor
	jobs      int
	logger    *log.Logger
}

// NewAnalyzer creates an analyzer running at most jobs extractions at once;
// zero or less means one per CPU
func NewAnalyzer(c *Cache, e *Extractor, jobs int, logger *log.Logger) *Analyzer {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Analyzer{cache: c, extractor: e, jobs: jobs, logger: logger}
}

// Analyze computes the dependencies of every source.
//
// Each pass extracts the pending files in parallel into per-file slots.
// Between passes, with no extraction running, remedies for missing headers
// are applied. If that changed the options every file is extracted again,
// otherwise only the files that failed. Passes are bounded by the
// extractor's attempt limit.
func (a *Analyzer) Analyze(ctx context.Context, sources []string) (*Graph, error) {
	files := make([]string, len(sources))
	for i, s := range sources {
		files[i] = Normalize(s)
	}

	results := make([]Result, len(files))
	pending := make([]int, len(files))
	for i := range pending {
		pending[i] = i
	}

	force := false
	for pass := 1; ; pass++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.jobs)

		for _, i := range pending {
			g.Go(func() error {
				results[i] = a.cache.Lookup(gctx, files[i], force)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		var retry []int
		var missing []string
		for _, i := range pending {
			switch results[i].Status {
			case Fatal:
				return nil, results[i].failure(pass)
			case Retryable:
				retry = append(retry, i)
				missing = append(missing, results[i].Missing...)
			}
		}

		if len(retry) == 0 {
			break
		}

		if pass >= a.extractor.Attempts() {
			return nil, results[retry[0]].failure(pass)
		}

		a.logger.Info("There were some errors computing dependencies. Attempting to recover.",
			"attempt", pass, "files", len(retry), "missing", missing)

		force = a.extractor.ApplyRemedies(ctx, missing)
		if force {
			retry = retry[:0]
			for i := range files {
				retry = append(retry, i)
			}
		}

		pending = retry
	}

	graph := &Graph{
		Sources:      files,
		Dependencies: make(map[string][]string, len(files)),
		Parents:      make(map[string][]string),
	}

	for i, f := range files {
		deps := results[i].Dependencies
		graph.Dependencies[f] = deps

		for _, d := range deps {
			if !slices.Contains(graph.Parents[d], f) {
				graph.Parents[d] = append(graph.Parents[d], f)
			}
		}
	}

	return graph, nil
}
