package compiler

import (
	"strings"
)

// Toolchain supplies what a compiler command line is built from
type Toolchain interface {
	CompilerOptions() []string
	IncludePaths() []string
}

type ShellCommand struct {
	Path string
	Args []string

	// Working directory, empty for the current one
	Dir string
}

// String renders the command for logs, quoting arguments with spaces
func (c *ShellCommand) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Path))
	for _, arg := range c.Args {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}

	return s
}

// GetDependencyCommand returns the command that lists every file source
// depends on as a make rule. Missing headers are reported, not fatal.
func GetDependencyCommand(compiler string, tc Toolchain, source string) *ShellCommand {
	args := []string{"-M", "-MG"}
	args = append(args, DependencyOptions(tc.CompilerOptions())...)
	args = append(args, includeFlags(tc.IncludePaths())...)
	args = append(args, source)

	return &ShellCommand{Path: compiler, Args: args}
}

// GetCompileCommand returns the command that compiles source into object
func GetCompileCommand(compiler string, tc Toolchain, source, object string) *ShellCommand {
	args := CompileOptions(tc.CompilerOptions())
	args = append(args, "-c")
	args = append(args, includeFlags(tc.IncludePaths())...)
	args = append(args, "-o", object, source)

	return &ShellCommand{Path: compiler, Args: args}
}

// DependencyOptions drops options that conflict with dependency listing:
// output and dependency-file flags, and -arch, since only one
// architecture can be listed at a time
func DependencyOptions(opts []string) []string {
	var out []string

	skip := false
	for _, opt := range opts {
		if skip {
			skip = false
			continue
		}

		switch opt {
		case "-M", "-MG", "-MM", "-MD", "-MMD", "-MP", "-c":
			continue
		case "-MF", "-MT", "-MQ", "-o", "-arch":
			skip = true
			continue
		}

		if strings.HasPrefix(opt, "-MF") || strings.HasPrefix(opt, "-MT") || strings.HasPrefix(opt, "-o") {
			continue
		}

		out = append(out, opt)
	}

	return out
}

// CompileOptions drops -c and -o from opts, which the compile command sets
// itself
func CompileOptions(opts []string) []string {
	var out []string

	skip := false
	for _, opt := range opts {
		if skip {
			skip = false
			continue
		}

		switch {
		case opt == "-c":
			continue
		case opt == "-o":
			skip = true
			continue
		case strings.HasPrefix(opt, "-o"):
			continue
		}

		out = append(out, opt)
	}

	return out
}

func includeFlags(paths []string) []string {
	flags := make([]string, 0, len(paths))
	for _, p := range paths {
		flags = append(flags, "-I"+p)
	}

	return flags
}
