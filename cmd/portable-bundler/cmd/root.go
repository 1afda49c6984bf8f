package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/portablepy/portable-bundler/internal/config"
	"github.com/portablepy/portable-bundler/internal/logger"
	"github.com/portablepy/portable-bundler/internal/service/bundler"
	"github.com/portablepy/portable-bundler/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// cacheDir overrides the configured archive cache directory.
	cacheDir string

	// outputDir overrides the configured bundle output root.
	outputDir string

	// logLevel sets the minimum logging level.
	logLevel string

	// refresh forces re-downloads of already cached archives.
	refresh bool

	// rootCmd represents the base command for assembling portable bundles.
	rootCmd = &cobra.Command{
		Use:   "portable-bundler [windows|linux|macos ...]",
		Short: "Assemble portable application bundles for target platforms",
		Long: "Download standalone interpreter archives for the requested target platforms, " +
			"extract them and inject the application package into each bundle. " +
			"Unknown platform tokens are skipped with a warning; no tokens selects every platform.",
		Args: cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &bundler.Options{
				ConfigPath: configPath,
				Platforms:  args,
				CacheDir:   cacheDir,
				OutputDir:  outputDir,
				Refresh:    refresh,
			}

			return bundler.Run(ctx, options)
		},
	}
)

// Execute runs the portable-bundler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for downloaded interpreter archives")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "root directory for staged bundles")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug|info|warn|error)")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "re-download archives even when cached")
}
