package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources.
// Each Loader owns its own viper instance so that sibling projects can be
// loaded without disturbing the current one.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Viper exposes the underlying viper instance
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// LoadForBuild loads configuration for the project containing dir. The
// project root is the nearest directory at or above dir holding a project
// file; without one, dir itself is the root.
func (l *Loader) LoadForBuild(cmd *cobra.Command, dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	projectFile, root := FindProjectFile(absDir)
	if root == "" {
		root = absDir
	}

	return l.load(cmd, root, projectFile)
}

// LoadDir loads configuration for the project rooted exactly at dir,
// without command line flags
func (l *Loader) LoadDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	return l.load(nil, absDir, ProjectFileIn(absDir))
}

// Resolve loads the configuration of the project rooted at dir
func Resolve(dir string) (*Config, error) {
	return NewLoader().LoadDir(dir)
}

func (l *Loader) load(cmd *cobra.Command, root, projectFile string) (*Config, error) {
	l.setupViperDefaults()
	preferenceFile := l.loadPreferences()

	if err := l.loadProject(projectFile); err != nil {
		return nil, err
	}

	l.bindEnv()
	if cmd != nil {
		l.bindCommandFlags(cmd)
	}

	cfg, err := Load(l.v, root)
	if err != nil {
		return nil, err
	}

	cfg.ProjectFile = projectFile
	cfg.PreferenceFile = preferenceFile

	return cfg, nil
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	compiler := os.Getenv("CXX")
	if compiler == "" {
		compiler = DefaultCompiler
	}

	l.v.SetDefault("compiler", compiler)
	l.v.SetDefault("target", DefaultTarget)
	l.v.SetDefault("builddir", DefaultBuildDir)
	l.v.SetDefault("tempdir", DefaultTempDir)
	l.v.SetDefault("cachedir", DefaultCacheDir)
	l.v.SetDefault("sibling_depth", DefaultSiblingDepth)
	l.v.SetDefault("dependency_attempts", DefaultDependencyAttempts)
	l.v.SetDefault("warning_window", DefaultWarningWindow)
	l.v.SetDefault("verbose", DefaultVerbose)
}

// loadPreferences loads the user's preference file, returning its path
func (l *Loader) loadPreferences() string {
	path := FindPreferenceFile()
	if path == "" {
		return ""
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		// an unreadable preference file is ignored like a missing one
		return ""
	}

	return path
}

// loadProject merges the project file over the preferences
func (l *Loader) loadProject(path string) error {
	if path == "" {
		return nil
	}

	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return &ValidationError{Key: "project file " + path, Err: err}
	}

	return nil
}

// bindEnv lets ICE_* environment variables override files
func (l *Loader) bindEnv() {
	l.v.SetEnvPrefix("ice")
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	l.v.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	for key, name := range map[string]string{
		"target":   "target",
		"verbose":  "verbose",
		"jobs":     "jobs",
		"compiler": "compiler",
	} {
		if f := flags.Lookup(name); f != nil {
			_ = l.v.BindPFlag(key, f)
		}
	}

	// --opt is shorthand for --target release
	if f := flags.Lookup("opt"); f != nil && f.Changed && f.Value.String() == "true" {
		l.v.Set("target", "release")
	}
}
