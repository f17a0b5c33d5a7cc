package utils

import "strings"

// ArtifactKind is what a project directory builds, derived from the
// extension of its name (foo.lib, bar.so, baz).
type ArtifactKind int

const (
	Unknown ArtifactKind = iota
	Executable
	StaticLibrary
	DynamicLibrary
)

func (k ArtifactKind) String() string {
	switch k {
	case Executable:
		return "executable"
	case StaticLibrary:
		return "static library"
	case DynamicLibrary:
		return "dynamic library"
	}

	return "unknown"
}

// IsLibrary reports whether k is a static or dynamic library
func (k ArtifactKind) IsLibrary() bool {
	return k == StaticLibrary || k == DynamicLibrary
}

// ClassifyArtifact splits a project directory name into its raw name and
// artifact kind. Names without an extension are executables.
func ClassifyArtifact(name string) (string, ArtifactKind) {
	base := BaseName(strings.TrimRight(name, `/\`))
	raw, ext := SplitExt(base)

	switch strings.ToLower(ext) {
	case "lib", "a":
		return raw, StaticLibrary
	case "so", "dll":
		return raw, DynamicLibrary
	case "exe", "":
		return raw, Executable
	}

	return raw, Unknown
}

// BaseName returns the part of a path after the last forward or back slash
func BaseName(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	return path[i+1:]
}

// SplitExt splits a file name (no directory) at its last dot. A leading dot
// does not start an extension, so ".hidden" has none.
func SplitExt(base string) (string, string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base, ""
	}

	return base[:i], base[i+1:]
}
