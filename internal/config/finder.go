package config

import (
	"os"
	"path/filepath"
)

// ProjectFileNames are the accepted project file names, in priority order
var ProjectFileNames = []string{"ice.yml", "ice.yaml", "ice.json", "ice.toml"}

// FindProjectFile finds a project file by walking up directories.
// It returns the file and the directory containing it, or empty strings.
func FindProjectFile(dir string) (string, string) {
	for {
		if path := ProjectFileIn(dir); path != "" {
			return path, dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return "", ""
}

// ProjectFileIn returns the project file directly inside dir, or ""
func ProjectFileIn(dir string) string {
	for _, name := range ProjectFileNames {
		path := filepath.Join(dir, name)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// FindPreferenceFile returns the user's preference file, or "" if none
// exists. <config dir>/ice/config.* is preferred over ~/.icompile.*.
func FindPreferenceFile() string {
	var candidates []string

	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "ice", "config"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".icompile"))
	}

	for _, base := range candidates {
		for _, ext := range []string{"yml", "yaml", "json", "toml"} {
			path := base + "." + ext

			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}

	return ""
}
