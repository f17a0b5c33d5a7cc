package depend

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ObjectFilename returns where the object file for source goes: the
// source's directories below the project root, under objDir, with the
// extension of the base name replaced by ".o"
func ObjectFilename(objDir, source string) string {
	rel := filepath.FromSlash(strings.TrimPrefix(source, "./"))
	dir, base := filepath.Split(rel)

	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}

	return filepath.Join(objDir, dir, base+".o")
}

// OutOfDate returns the sources that must be recompiled. A source is out
// of date when its object file is missing, older than freshness, or older
// than any file it depends on.
func OutOfDate(stamps *Stamps, objDir string, freshness time.Time, graph *Graph, logger *log.Logger) []string {
	if logger == nil {
		logger = log.Default()
	}

	var stale []string
	for _, source := range graph.Sources {
		object := ObjectFilename(objDir, source)
		if reason := staleReason(stamps, object, freshness, graph.Dependencies[source]); reason != "" {
			logger.Debug(source + " is out of date: " + reason)
			stale = append(stale, source)
		}
	}

	return stale
}

func staleReason(stamps *Stamps, object string, freshness time.Time, deps []string) string {
	objTime := stamps.ModTime(object)
	if objTime.IsZero() {
		return object + " does not exist"
	}

	if objTime.Before(freshness) {
		return "the build tool or its configuration is newer than " + object
	}

	for _, d := range deps {
		if stamps.ModTime(d).After(objTime) {
			return d + " is newer than " + object
		}
	}

	return ""
}
