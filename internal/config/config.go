package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/ice/internal/codes"
	"github.com/Norgate-AV/ice/internal/utils"
)

// Default configuration values
const (
	DefaultCompiler           = "g++"
	DefaultTarget             = "debug"
	DefaultBuildDir           = "build"
	DefaultTempDir            = ".ice-tmp"
	DefaultCacheDir           = ".ice-cache"
	DefaultSiblingDepth       = 3
	DefaultDependencyAttempts = 3
	DefaultWarningWindow      = 72 * time.Hour
	DefaultVerbose            = false
)

// Holds the configuration options for one project
type Config struct {
	// Absolute project root directory
	RootDir string

	// Root directory name without its extension
	ProjectName string

	// What the project builds, from the root directory's extension
	BinaryKind utils.ArtifactKind

	// Project and preference files that were read, empty if none.
	// Changing either invalidates every object file.
	ProjectFile    string
	PreferenceFile string

	// Compiler executable
	Compiler string

	// Options passed to every compile and link
	CompileOptions []string
	LinkOptions    []string

	// Absolute include and library search paths
	IncludePaths []string
	LibraryPaths []string

	// Libraries or sibling project directories this project links against
	Uses []string

	// Regular expression for files and directories not to compile
	Exclude string

	// Absolute output directories
	BuildDir string
	TempDir  string
	CacheDir string

	// Debug or release
	Target utils.Target

	// e.g. linux-amd64-gcc
	Platform string

	// Where object files and the final binary are written
	ObjDir    string
	BinaryDir string

	// How many parent levels to search for sibling libraries
	SiblingDepth int

	// Total attempts allowed for one file's dependency extraction
	DependencyAttempts int

	// Parallel workers, 0 means one per CPU
	Jobs int

	// How long an identical warning stays suppressed
	WarningWindow time.Duration

	// Enable verbose output
	Verbose bool

	// Operating system the build targets
	GOOS string
}

// ValidationError reports an unusable configuration value
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) ExitCode() int { return codes.Configuration }

// Load reads the configuration for the project rooted at root out of v
func Load(v *viper.Viper, root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	target, err := utils.ParseTarget(v.GetString("target"))
	if err != nil {
		return nil, &ValidationError{Key: "target", Err: err}
	}

	name, kind := utils.ClassifyArtifact(absRoot)
	cfg := &Config{
		RootDir:            absRoot,
		ProjectName:        name,
		BinaryKind:         kind,
		Compiler:           v.GetString("compiler"),
		CompileOptions:     v.GetStringSlice("compile_options"),
		LinkOptions:        v.GetStringSlice("link_options"),
		IncludePaths:       v.GetStringSlice("include"),
		LibraryPaths:       v.GetStringSlice("library"),
		Uses:               v.GetStringSlice("uses"),
		Exclude:            v.GetString("exclude"),
		BuildDir:           v.GetString("builddir"),
		TempDir:            v.GetString("tempdir"),
		CacheDir:           v.GetString("cachedir"),
		Target:             target,
		SiblingDepth:       v.GetInt("sibling_depth"),
		DependencyAttempts: v.GetInt("dependency_attempts"),
		Jobs:               v.GetInt("jobs"),
		WarningWindow:      v.GetDuration("warning_window"),
		Verbose:            v.GetBool("verbose"),
		GOOS:               runtime.GOOS,
	}

	// Apply defaults if not set
	if cfg.Compiler == "" {
		cfg.Compiler = DefaultCompiler
	}

	if cfg.DependencyAttempts == 0 {
		cfg.DependencyAttempts = DefaultDependencyAttempts
	}

	if cfg.BinaryKind == utils.Unknown {
		cfg.BinaryKind = utils.Executable
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values and resolves every directory against RootDir
func (c *Config) Validate() error {
	if c.Exclude != "" {
		if _, err := regexp.Compile(c.Exclude); err != nil {
			return &ValidationError{Key: "exclude", Err: err}
		}
	}

	if c.DependencyAttempts < 1 {
		return &ValidationError{Key: "dependency_attempts", Err: fmt.Errorf("must be at least 1, got %d", c.DependencyAttempts)}
	}

	if c.SiblingDepth < 0 {
		return &ValidationError{Key: "sibling_depth", Err: fmt.Errorf("must not be negative, got %d", c.SiblingDepth)}
	}

	if c.Jobs < 0 {
		return &ValidationError{Key: "jobs", Err: fmt.Errorf("must not be negative, got %d", c.Jobs)}
	}

	c.BuildDir = c.resolve(orDefault(c.BuildDir, DefaultBuildDir))
	c.TempDir = c.resolve(orDefault(c.TempDir, DefaultTempDir))
	c.CacheDir = c.resolve(orDefault(c.CacheDir, DefaultCacheDir))

	for i, p := range c.IncludePaths {
		c.IncludePaths[i] = c.resolve(p)
	}

	for i, p := range c.LibraryPaths {
		c.LibraryPaths[i] = c.resolve(p)
	}

	c.Platform = fmt.Sprintf("%s-%s-%s", c.GOOS, runtime.GOARCH, CompilerNickname(c.Compiler))
	c.ObjDir = filepath.Join(c.TempDir, c.ProjectName, c.Platform, string(c.Target))

	c.BinaryDir = filepath.Join(c.BuildDir, c.Platform)
	if c.BinaryKind.IsLibrary() {
		c.BinaryDir = filepath.Join(c.BinaryDir, "lib")
	}

	return nil
}

// ExcludePattern returns the compiled Exclude expression, nil if unset
func (c *Config) ExcludePattern() *regexp.Regexp {
	if c.Exclude == "" {
		return nil
	}

	return regexp.MustCompile(c.Exclude)
}

// resolve makes p absolute relative to RootDir
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(c.RootDir, p)
}

// CompilerNickname returns a short name for a compiler executable,
// e.g. /usr/bin/g++-12 -> gcc12
func CompilerNickname(compiler string) string {
	name := strings.TrimSuffix(utils.BaseName(compiler), ".exe")

	for prefix, nick := range map[string]string{"g++": "gcc", "gcc": "gcc", "clang++": "clang", "clang": "clang", "c++": "cc", "cc": "cc"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && (rest == "" || rest[0] == '-') {
			return nick + strings.TrimPrefix(rest, "-")
		}
	}

	return name
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
