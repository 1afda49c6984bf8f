package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/portablepy/portable-bundler/internal/config"
	"github.com/portablepy/portable-bundler/internal/logger"
	"github.com/portablepy/portable-bundler/internal/platform"
)

// Options contains inputs for the bundler entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Platforms are the raw positional platform tokens from the command line.
	Platforms []string
	// CacheDir overrides the configured archive cache directory when non-empty.
	CacheDir string
	// OutputDir overrides the configured bundle output root when non-empty.
	OutputDir string
	// Refresh forces a re-download of archives that are already cached.
	Refresh bool
}

const (
	// defaultDirMode is used for directories created while staging bundles.
	defaultDirMode os.FileMode = 0o755

	// archiveFileMode is used for archives committed into the cache.
	archiveFileMode os.FileMode = 0o644
)

// errBundlerRunning indicates another bundler instance owns the cache directory.
var errBundlerRunning = errors.New("another bundler instance is running")

// runner holds the resolved settings and helpers for a single bundling execution.
// It is intentionally unexported—callers should use Run, which encapsulates
// setup and validation.
type runner struct {
	// cfg holds the bundling inputs after defaults and CLI overrides.
	cfg *config.Config
	// archiver is the resolved path of the external decompression tool.
	archiver string
	// refresh forces re-downloads of already cached archives.
	refresh bool
}

// Run executes the bundling workflow and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "portable-bundler")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// An entirely invalid selection degrades to an empty run on purpose.
	platforms := platform.Resolve(ctx, opts.Platforms)
	if len(platforms) == 0 {
		logger.Warn(ctx, "No supported platforms selected, nothing to do")
		return nil
	}

	r, err := newRunner(ctx, cfg, opts.Refresh)
	if err != nil {
		return fmt.Errorf("initialize bundler: %w", err)
	}

	defer r.cleanup(ctx)

	if err = r.Run(ctx, platforms); err != nil {
		logger.ErrorKV(ctx, "Bundler run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Bundler completed successfully")

	return nil
}

// loadConfig loads settings from disk and applies CLI overrides.
// A missing settings file at the default location falls back to defaults;
// an explicitly requested file must exist.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) &&
		(opts.ConfigPath == "" || opts.ConfigPath == config.DefaultConfigFilename):
		cfg = config.Default()
	default:
		return nil, err
	}

	if opts.CacheDir != "" {
		cfg.CacheDir = opts.CacheDir
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	return cfg, nil
}

// newRunner resolves the external archiver, prepares the cache directory and
// claims the single-instance marker. The archiver lookup happens first so a
// missing tool is reported before anything on disk is touched.
func newRunner(ctx context.Context, cfg *config.Config, refresh bool) (*runner, error) {
	archiver, err := findArchiver(cfg.Archiver)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(cfg.CacheDir, defaultDirMode); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	if isBundlerRunningNow(ctx, cfg.CacheDir) {
		return nil, errBundlerRunning
	}

	if err = claimInstanceMarker(cfg.CacheDir); err != nil {
		return nil, err
	}

	return &runner{cfg: cfg, archiver: archiver, refresh: refresh}, nil
}

// Run assembles a bundle for each platform, strictly in order.
// The first failure aborts the whole run with no cleanup of directories
// already produced.
func (r *runner) Run(ctx context.Context, platforms []platform.Platform) error {
	for _, p := range platforms {
		pctx := logger.WithKV(ctx, "platform", p.String())

		if err := r.bundlePlatform(pctx, p); err != nil {
			return fmt.Errorf("bundle %s: %w", p, err)
		}
	}

	return nil
}

// bundlePlatform runs the per-platform pipeline: cache, extract, normalize, assemble.
func (r *runner) bundlePlatform(ctx context.Context, p platform.Platform) error {
	spec, ok := p.Spec()
	if !ok {
		// Resolve filters tokens, so this only fires on a programming error.
		return fmt.Errorf("no parameters for platform %s", p)
	}

	archivePath, err := r.ensureArchiveCached(ctx, spec)
	if err != nil {
		return fmt.Errorf("ensure archive cached: %w", err)
	}

	workDir := filepath.Join(r.cfg.OutputDir, p.String())

	logger.InfoKV(ctx, "Resetting platform working directory", "path", workDir)

	// Destructive: previous contents, including partial prior runs, are gone.
	if err = os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("reset working directory: %w", err)
	}

	if err = os.MkdirAll(workDir, defaultDirMode); err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}

	if err = r.extractArchive(ctx, spec, archivePath, workDir); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}

	if err = collapseInstallDir(ctx, workDir); err != nil {
		return fmt.Errorf("normalize interpreter layout: %w", err)
	}

	if err = r.assembleBundle(ctx, p, spec, workDir); err != nil {
		return fmt.Errorf("assemble bundle: %w", err)
	}

	logger.InfoKV(ctx, "Platform bundle is ready", "path", workDir)

	return nil
}

// cleanup releases the single-instance marker.
func (r *runner) cleanup(ctx context.Context) {
	marker := markerPath(r.cfg.CacheDir)
	if _, err := os.Stat(marker); err == nil {
		_ = os.Remove(marker)
	}

	logger.Info(ctx, "The bundler has been stopped")
}
