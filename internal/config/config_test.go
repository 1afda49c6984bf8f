package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaulting and rejection of bad values.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	err := Validate(nil)
	require.Error(t, err)

	// Empty config gets defaults except the required app package.
	cfg := new(Config)

	err = Validate(cfg)
	require.ErrorIs(t, err, errAppPackageRequired)

	// Minimal valid config is filled with defaults.
	cfg = &Config{AppPackage: "myapp"}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultCacheDir, cfg.CacheDir)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.Equal(t, DefaultSetupFile, cfg.SetupFile)
	require.Equal(t, DefaultReadmeFile, cfg.ReadmeFile)
	require.Equal(t, DefaultScriptsDir, cfg.ScriptsDir)
	require.Equal(t, DefaultArchiver, cfg.Archiver)
	require.Equal(t, DefaultDownloadTimeout, cfg.DownloadTimeout)

	// Negative timeout is rejected.
	cfg = &Config{AppPackage: "myapp", DownloadTimeout: -time.Second}

	err = Validate(cfg)
	require.ErrorIs(t, err, errNegativeTimeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		CacheDir:        filepath.Join(dir, "cache"),
		OutputDir:       filepath.Join(dir, "out"),
		AppPackage:      "myapp",
		DownloadTimeout: time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.CacheDir, loaded.CacheDir)
	require.Equal(t, cfg.OutputDir, loaded.OutputDir)
	require.Equal(t, cfg.AppPackage, loaded.AppPackage)
	require.Equal(t, time.Minute, loaded.DownloadTimeout)

	// Defaults were applied on load for omitted fields.
	require.Equal(t, DefaultScriptsDir, loaded.ScriptsDir)
}

// TestLoad_MissingFilePreservesNotExist lets callers detect an absent settings file.
func TestLoad_MissingFilePreservesNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

// TestDefault returns a config that validates cleanly.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultAppPackage, cfg.AppPackage)
}
