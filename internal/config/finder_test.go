package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindProjectFile(t *testing.T) {
	// Create a temporary directory structure
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	err := os.Mkdir(subDir, 0o755)
	assert.NoError(t, err)

	// Create config files
	configYML := filepath.Join(subDir, "ice.yml")
	err = os.WriteFile(configYML, []byte("target: release"), 0o644)
	assert.NoError(t, err)

	// Test finding in subdir
	path, root := FindProjectFile(subDir)
	assert.Equal(t, configYML, path)
	assert.Equal(t, subDir, root)

	// Test finding in parent
	path, root = FindProjectFile(filepath.Join(subDir, "deep"))
	assert.Equal(t, configYML, path)
	assert.Equal(t, subDir, root)

	// Test not found
	path, root = FindProjectFile(tempDir)
	assert.Equal(t, "", path)
	assert.Equal(t, "", root)
}

func TestProjectFileIn(t *testing.T) {
	tempDir := t.TempDir()
	assert.Equal(t, "", ProjectFileIn(tempDir))

	// ice.yml wins over ice.json
	assert.NoError(t, os.WriteFile(filepath.Join(tempDir, "ice.json"), []byte("{}"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(tempDir, "ice.yml"), []byte(""), 0o644))
	assert.Equal(t, filepath.Join(tempDir, "ice.yml"), ProjectFileIn(tempDir))

	// does not look upward
	sub := filepath.Join(tempDir, "sub")
	assert.NoError(t, os.Mkdir(sub, 0o755))
	assert.Equal(t, "", ProjectFileIn(sub))
}

func TestFindPreferenceFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("user config directory is only redirected through XDG_CONFIG_HOME on linux")
	}

	configDir, home := t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("HOME", home)

	assert.Equal(t, "", FindPreferenceFile())

	legacy := filepath.Join(home, ".icompile.yml")
	assert.NoError(t, os.WriteFile(legacy, []byte("verbose: true"), 0o644))
	assert.Equal(t, legacy, FindPreferenceFile())

	preferred := filepath.Join(configDir, "ice", "config.toml")
	assert.NoError(t, os.MkdirAll(filepath.Dir(preferred), 0o755))
	assert.NoError(t, os.WriteFile(preferred, []byte("verbose = true"), 0o644))
	assert.Equal(t, preferred, FindPreferenceFile())
}
