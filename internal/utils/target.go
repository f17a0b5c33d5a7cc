package utils

import (
	"fmt"
	"strings"
)

// Target selects the debug or release build configuration
type Target string

const (
	Debug   Target = "debug"
	Release Target = "release"
)

// ParseTarget parses a target name. The empty string selects Debug.
func ParseTarget(t string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "debug", "d":
		return Debug, nil
	case "release", "opt", "r":
		return Release, nil
	}

	return "", fmt.Errorf("invalid target: %q", t)
}

// Suffix returns the suffix appended to debug artifact names
func (t Target) Suffix() string {
	if t == Debug {
		return "d"
	}

	return ""
}
