package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/portablepy/portable-bundler/internal/logger"
	"github.com/portablepy/portable-bundler/internal/platform"
)

// installDirName is the nested directory the upstream archive format wraps
// the actual runtime in.
const installDirName = "install"

// findArchiver resolves the external decompression tool on PATH.
// It runs before any network or filesystem activity so a missing tool stops
// the run cleanly.
func findArchiver(name string) (string, error) {
	archiver, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("locate archiver %q: %w", name, err)
	}

	return archiver, nil
}

// extractArchive unpacks the cached archive into the platform working
// directory using the platform's archiver flags. Any failure is fatal to the
// whole run; partially extracted contents are left in place.
func (r *runner) extractArchive(ctx context.Context, spec platform.Spec, archivePath, destDir string) error {
	args := make([]string, 0, len(spec.ExtractFlags)+3)
	args = append(args, spec.ExtractFlags...)
	args = append(args, archivePath, "-C", destDir)

	logger.InfoKV(ctx, "Extracting archive", "archive", archivePath, "dest", destDir)

	cmd := exec.CommandContext(ctx, r.archiver, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s",
			r.archiver, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}

	return nil
}

// collapseInstallDir flattens python/install/* one level up into python/,
// normalizing the upstream archive layout. A layout without the nested
// directory is left untouched.
func collapseInstallDir(ctx context.Context, workDir string) error {
	pythonDir := filepath.Join(workDir, "python")
	installDir := filepath.Join(pythonDir, installDirName)

	entries, err := os.ReadDir(installDir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "No nested install directory, interpreter layout already flat")
		return nil
	}

	if err != nil {
		return fmt.Errorf("read nested install directory: %w", err)
	}

	logger.DebugKV(ctx, "Collapsing nested install directory", "path", installDir)

	for _, entry := range entries {
		source := filepath.Join(installDir, entry.Name())
		target := filepath.Join(pythonDir, entry.Name())

		if err = os.Rename(source, target); err != nil {
			return fmt.Errorf("collapse %s: %w", entry.Name(), err)
		}
	}

	return os.Remove(installDir)
}
