// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Entry is a file or directory produced by Walk. Path is relative to the
// walk root and uses forward slashes.
type Entry struct {
	Path string
	Dir  bool

	skip *bool
}

// SkipDir tells the walker not to descend into this directory. It has no
// effect on files or once iteration has moved past the entry.
func (e Entry) SkipDir() {
	if e.Dir && e.skip != nil {
		*e.skip = true
	}
}

// Name returns the last element of the entry's path
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Walk lazily yields every entry below root in lexical order, depth first.
// A directory is yielded before its children; calling SkipDir on it before
// the next iteration prunes them. Read errors are yielded with the path of
// the directory that failed and the walk continues with its siblings.
func Walk(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		stack := []string{""}

		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
			if err != nil {
				if !yield(Entry{Path: dir, Dir: true}, err) {
					return
				}

				continue
			}

			var subdirs []string
			for _, de := range entries {
				rel := de.Name()
				if dir != "" {
					rel = dir + "/" + rel
				}

				isDir := de.IsDir() || (de.Type()&fs.ModeSymlink != 0 && isDirTarget(filepath.Join(root, rel)))
				skip := false
				if !yield(Entry{Path: rel, Dir: isDir, skip: &skip}, nil) {
					return
				}

				if isDir && !skip {
					subdirs = append(subdirs, rel)
				}
			}

			// pushed in reverse so the first subdirectory is visited next
			slices.Reverse(subdirs)
			stack = append(stack, subdirs...)
		}
	}
}

func isDirTarget(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsHidden reports whether any element of a slash-separated relative path
// starts with a dot
func IsHidden(rel string) bool {
	for part := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}

	return false
}
