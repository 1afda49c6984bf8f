package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/portablepy/portable-bundler/internal/logger"
)

const (
	// markerFilename marks that a bundler owns the cache directory right now.
	// The cache has no locking of its own, so two concurrent runs must not share it.
	markerFilename = "portable-bundler-marker.bin"

	// markerLifetime is the age after which a marker is suspected stale.
	// Archive downloads are slow, so this is generous.
	markerLifetime = 30 * time.Minute

	// baseExecutableName is this binary's name as seen in the process table.
	baseExecutableName = "portable-bundler"
)

// markerPath returns the marker location inside the cache directory.
func markerPath(cacheDir string) string {
	return filepath.Join(cacheDir, markerFilename)
}

// claimInstanceMarker creates the marker for this run. A claim that cannot
// be completed leaves no marker behind, so it never blocks the next run.
func claimInstanceMarker(cacheDir string) error {
	marker := markerPath(cacheDir)

	file, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("create instance marker: %w", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(marker)

		return fmt.Errorf("close instance marker: %w", err)
	}

	return nil
}

// isBundlerRunningNow checks presence of the instance marker and attempts
// recovery if it looks stale: a marker left behind by a crashed run is
// removed once the process table confirms no other bundler is alive.
func isBundlerRunningNow(ctx context.Context, cacheDir string) bool {
	marker := markerPath(cacheDir)

	fileInfo, err := os.Stat(marker)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The instance marker is stale, checking the process table")

		running, psErr := anotherBundlerProcessExists()
		if psErr != nil || running {
			return true
		}

		if err = os.Remove(marker); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read instance marker: %v", err)

	return false
}

// anotherBundlerProcessExists scans the process table for a second bundler.
func anotherBundlerProcessExists() (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == bundlerExecutable() {
			return true, nil
		}
	}

	return false, nil
}

// bundlerExecutable returns the platform-specific binary name.
func bundlerExecutable() string {
	return baseExecutableName + getExecutableExtension()
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
