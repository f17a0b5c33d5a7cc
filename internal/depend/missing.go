package depend

import (
	"path/filepath"
	"slices"
	"strings"
)

const (
	includedFrom = "In file included from"
	noSuchFile   = ": No such file or directory"
)

// IsInclusionError reports whether the compiler output for file describes
// a header that could not be found even though missing headers were
// allowed. That happens when a directory on the search path does not
// exist. A report that file itself is missing is not an inclusion error.
func IsInclusionError(output, file string) bool {
	if strings.HasPrefix(strings.TrimLeft(output, " \t\r\n"), includedFrom) {
		return true
	}

	for line := range strings.Lines(output) {
		if name, ok := missingFile(line); ok && !samePath(name, file) {
			return true
		}
	}

	return false
}

// MissingHeaders returns the base names of the files an inclusion error
// for file reports as missing, in order, without repeats. A report line
// looks like
//
//	a.cpp:3:16: fatal error: wx/wx.h: No such file or directory
func MissingHeaders(output, file string) []string {
	var missing []string

	for line := range strings.Lines(output) {
		name, ok := missingFile(line)
		if !ok || samePath(name, file) {
			continue
		}

		name = filepath.Base(filepath.FromSlash(name))
		if name == "." || name == "" {
			continue
		}

		if !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}

	return missing
}

// missingFile returns the name a "No such file or directory" line reports
func missingFile(line string) (string, bool) {
	name, ok := strings.CutSuffix(strings.TrimRight(line, "\r\n"), noSuchFile)
	if !ok {
		return "", false
	}

	if j := strings.LastIndex(name, ": "); j >= 0 {
		name = name[j+2:]
	}

	return strings.TrimSpace(name), true
}

func samePath(a, b string) bool {
	return b != "" && filepath.Clean(filepath.FromSlash(a)) == filepath.Clean(filepath.FromSlash(b))
}
