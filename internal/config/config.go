package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the bundling inputs shared by every platform run.
type Config struct {
	// CacheDir is where downloaded interpreter archives are kept between runs.
	CacheDir string `yaml:"cache_dir"`
	// OutputDir is the root under which per-platform bundle trees are produced.
	OutputDir string `yaml:"output_dir"`
	// AppPackage is the path to the application package injected into each bundle.
	AppPackage string `yaml:"app_package"`
	// SetupFile is the setup descriptor copied into the install staging folder.
	SetupFile string `yaml:"setup_file"`
	// ReadmeFile is the documentation file copied into the install staging folder.
	ReadmeFile string `yaml:"readme_file"`
	// ScriptsDir holds one overlay subdirectory per platform.
	ScriptsDir string `yaml:"scripts_dir"`
	// Archiver is the external decompression tool used to unpack archives.
	Archiver string `yaml:"archiver"`
	// DownloadTimeout bounds a single archive download.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for bundler settings.
	DefaultConfigFilename = "portable-bundler-settings.yaml"

	// DefaultCacheDir is where archives land unless overridden.
	DefaultCacheDir = "cache"

	// DefaultOutputDir is the default root for staged bundles.
	DefaultOutputDir = "build"

	// DefaultAppPackage is the application package bundled by default.
	DefaultAppPackage = "meerschaum"

	// DefaultSetupFile is the default setup descriptor.
	DefaultSetupFile = "setup.py"

	// DefaultReadmeFile is the default documentation file.
	DefaultReadmeFile = "README.md"

	// DefaultScriptsDir is the default overlay root.
	DefaultScriptsDir = "scripts"

	// DefaultArchiver unpacks the zstd-compressed interpreter tarballs.
	DefaultArchiver = "tar"

	// DefaultDownloadTimeout bounds a single archive download.
	// Interpreter archives run to a few hundred megabytes.
	DefaultDownloadTimeout = 15 * time.Minute

	// DefaultFilePermissions is the file permission for persisted settings.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppPackageRequired is returned when the application package path is missing.
	errAppPackageRequired = errors.New("application package path must be provided")
	// errNegativeTimeout is returned for a negative download timeout.
	errNegativeTimeout = errors.New("download timeout must not be negative")
)

// Default returns a configuration populated with the standard layout.
func Default() *Config {
	return &Config{
		CacheDir:        DefaultCacheDir,
		OutputDir:       DefaultOutputDir,
		AppPackage:      DefaultAppPackage,
		SetupFile:       DefaultSetupFile,
		ReadmeFile:      DefaultReadmeFile,
		ScriptsDir:      DefaultScriptsDir,
		Archiver:        DefaultArchiver,
		DownloadTimeout: DefaultDownloadTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// The wrapped error preserves os.ErrNotExist so callers can fall back to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills omitted fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DownloadTimeout < 0 {
		return errNegativeTimeout
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.AppPackage == "" {
		return errAppPackageRequired
	}

	if cfg.SetupFile == "" {
		cfg.SetupFile = DefaultSetupFile
	}

	if cfg.ReadmeFile == "" {
		cfg.ReadmeFile = DefaultReadmeFile
	}

	if cfg.ScriptsDir == "" {
		cfg.ScriptsDir = DefaultScriptsDir
	}

	if cfg.Archiver == "" {
		cfg.Archiver = DefaultArchiver
	}

	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}

	return nil
}
