// Package codes defines the process exit codes reported by ice.
package codes

import "errors"

const (
	Success       = 0
	Failure       = 1
	Configuration = 2
	Dependency    = 3
	Compile       = 4
)

// Descriptions maps ice exit codes to their descriptions
var Descriptions = map[int]string{
	Success:       "Success",
	Failure:       "General failure",
	Configuration: "Invalid build configuration",
	Dependency:    "Dependency analysis failed",
	Compile:       "Compile errors",
}

// Coder is implemented by errors that know which exit code they map to.
type Coder interface {
	ExitCode() int
}

// IsSuccess returns true if the exit code indicates a successful build
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := Descriptions[code]; ok {
		return msg
	}

	return "Unknown error"
}

// FromError returns the exit code for err. Errors that do not implement
// Coder anywhere in their chain map to Failure.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var c Coder
	if errors.As(err, &c) {
		return c.ExitCode()
	}

	return Failure
}
