package depend

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/Norgate-AV/ice/internal/cache"
)

// RecordStore holds dependency records between builds
type RecordStore interface {
	Record(file string) (cache.Record, bool)
	PutRecord(rec cache.Record)
	DeleteRecord(file string)
}

// Cache returns dependency lists from stored records while they can be
// trusted, and from the Extractor otherwise. At most one extraction per
// file is in flight at any time.
type Cache struct {
	store     RecordStore
	extractor *Extractor
	stamps    *Stamps
	logger    *log.Logger
	now       func() time.Time

	group singleflight.Group
}

// NewCache creates a dependency cache
func NewCache(store RecordStore, extractor *Extractor, stamps *Stamps, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}

	return &Cache{
		store:     store,
		extractor: extractor,
		stamps:    stamps,
		logger:    logger,
		now:       time.Now,
	}
}

// Trusted returns the stored dependencies of file if neither file nor any
// of its recorded dependencies changed after the record was computed
func (c *Cache) Trusted(file string) ([]string, bool) {
	rec, ok := c.store.Record(file)
	if !ok {
		c.logger.Debug("There is no cached dependency information for " + file + ".")
		return nil, false
	}

	if c.stamps.ModTime(file).After(rec.ComputedAt) {
		c.logger.Debug("Cannot use cached dependency information for " + file + " because it has changed.")
		return nil, false
	}

	for _, d := range rec.Dependencies {
		if c.stamps.ModTime(d).After(rec.ComputedAt) {
			c.logger.Debug("Cannot use cached dependency information for " + file + " because " + d + " has changed.")
			return nil, false
		}
	}

	c.logger.Debug("Using cached dependency information for " + file)
	return slices.Clone(rec.Dependencies), true
}

// Lookup returns a Resolved result from a trusted record, or makes one
// extraction attempt and stores its result if it resolved. With force the
// stored record is ignored.
func (c *Cache) Lookup(ctx context.Context, file string, force bool) Result {
	if !force {
		if deps, ok := c.Trusted(file); ok {
			return Result{File: file, Status: Resolved, Dependencies: deps}
		}
	}

	v, _, _ := c.group.Do(file, func() (any, error) {
		if !force {
			if deps, ok := c.Trusted(file); ok {
				return Result{File: file, Status: Resolved, Dependencies: deps}, nil
			}
		}

		// taken before the compiler runs, so edits made while it runs
		// invalidate the record
		start := c.now()

		r := c.extractor.Attempt(ctx, file)
		if r.Status == Resolved {
			c.store.PutRecord(cache.Record{File: file, ComputedAt: start, Dependencies: r.Dependencies})
		}

		return r, nil
	})

	return v.(Result)
}

// Dependencies returns the complete dependency list of file, itself
// included, extracting it again when the stored record cannot be trusted.
// Remedies are applied between attempts as they come up; whole-project
// analysis goes through Analyzer, which serializes them across files.
func (c *Cache) Dependencies(ctx context.Context, file string) ([]string, error) {
	if deps, ok := c.Trusted(file); ok {
		return deps, nil
	}

	v, err, _ := c.group.Do(file, func() (any, error) {
		if deps, ok := c.Trusted(file); ok {
			return deps, nil
		}

		start := c.now()

		deps, err := c.extractor.Extract(ctx, file)
		if err != nil {
			return nil, err
		}

		c.store.PutRecord(cache.Record{File: file, ComputedAt: start, Dependencies: deps})
		return deps, nil
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]string)), nil
}

// Invalidate forgets the stored records of files
func (c *Cache) Invalidate(files ...string) {
	for _, f := range files {
		c.store.DeleteRecord(f)
	}
}
