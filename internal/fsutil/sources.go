package fsutil

import (
	"regexp"
	"slices"

	"github.com/Norgate-AV/ice/internal/utils"
)

// SourceOptions controls which files ListSources reports
type SourceOptions struct {
	// Exclude matches relative paths or base names that are not compiled.
	// Excluded directories are not descended into.
	Exclude *regexp.Regexp

	// Skip lists relative directories that are never descended into
	// (build, temp and cache directories).
	Skip []string

	// GOOS decides whether Objective-C sources count
	GOOS string
}

// ListSources returns every C/C++ source file below root, relative to root,
// in walk order
func ListSources(root string, opts SourceOptions) ([]string, error) {
	var files []string

	for e, err := range Walk(root) {
		if err != nil {
			return nil, err
		}

		if e.Dir {
			if slices.Contains(opts.Skip, e.Path) || IsHidden(e.Path) || excluded(opts.Exclude, e) {
				e.SkipDir()
			}

			continue
		}

		if excluded(opts.Exclude, e) {
			continue
		}

		if utils.IsSourceFile(e.Path, opts.GOOS) {
			files = append(files, e.Path)
		}
	}

	return files, nil
}

func excluded(re *regexp.Regexp, e Entry) bool {
	if re == nil {
		return false
	}

	return re.MatchString(e.Path) || re.MatchString(e.Name())
}
