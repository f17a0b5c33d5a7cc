package utils

import "strings"

var sourceExts = map[string]bool{
	"cpp": true,
	"c":   true,
	"c++": true,
	"cxx": true,
	"cc":  true,
	"i":   true,
	"ii":  true,
}

// Objective-C sources are only compiled on darwin
var darwinSourceExts = map[string]bool{
	"m":   true,
	"mm":  true,
	"mi":  true,
	"mii": true,
}

// IsSourceFile returns true if name is a C/C++ source file the compiler
// for goos can build
func IsSourceFile(name, goos string) bool {
	_, ext := SplitExt(BaseName(name))
	ext = strings.ToLower(ext)

	if sourceExts[ext] {
		return true
	}

	return goos == "darwin" && darwinSourceExts[ext]
}
