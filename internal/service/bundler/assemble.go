package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/portablepy/portable-bundler/internal/logger"
	"github.com/portablepy/portable-bundler/internal/platform"
)

// assembleBundle overlays the platform scripts onto the working directory,
// stages the application package, setup descriptor and README under
// scripts/install, and injects the application package into the
// interpreter's site-packages directory so it is importable at runtime.
func (r *runner) assembleBundle(ctx context.Context, p platform.Platform, spec platform.Spec, workDir string) error {
	scriptsDir := filepath.Join(workDir, "scripts")

	if err := r.copyPlatformOverlay(ctx, p, scriptsDir); err != nil {
		return err
	}

	stagingDir := filepath.Join(scriptsDir, installDirName)
	if err := os.MkdirAll(stagingDir, defaultDirMode); err != nil {
		return fmt.Errorf("create install staging directory: %w", err)
	}

	appName := filepath.Base(r.cfg.AppPackage)

	logger.InfoKV(ctx, "Staging application files", "path", stagingDir)

	if err := cp.Copy(r.cfg.AppPackage, filepath.Join(stagingDir, appName)); err != nil {
		return fmt.Errorf("stage application package: %w", err)
	}

	if err := cp.Copy(r.cfg.SetupFile, filepath.Join(stagingDir, filepath.Base(r.cfg.SetupFile))); err != nil {
		return fmt.Errorf("stage setup descriptor: %w", err)
	}

	if err := cp.Copy(r.cfg.ReadmeFile, filepath.Join(stagingDir, filepath.Base(r.cfg.ReadmeFile))); err != nil {
		return fmt.Errorf("stage readme: %w", err)
	}

	siteDir := filepath.Join(workDir, filepath.FromSlash(spec.SitePackagesDir))
	if err := os.MkdirAll(siteDir, defaultDirMode); err != nil {
		return fmt.Errorf("create site-packages directory: %w", err)
	}

	logger.InfoKV(ctx, "Injecting application package into site-packages", "path", siteDir)

	if err := cp.Copy(r.cfg.AppPackage, filepath.Join(siteDir, appName)); err != nil {
		return fmt.Errorf("inject application package: %w", err)
	}

	return nil
}

// copyPlatformOverlay copies scripts/<platform> into the bundle's scripts
// directory. A platform without an overlay is tolerated with a warning so a
// bare runtime bundle can still be produced.
func (r *runner) copyPlatformOverlay(ctx context.Context, p platform.Platform, scriptsDir string) error {
	overlayDir := filepath.Join(r.cfg.ScriptsDir, p.String())

	if _, err := os.Stat(overlayDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "No overlay scripts for platform", "path", overlayDir)
			return nil
		}

		return fmt.Errorf("stat platform overlay: %w", err)
	}

	logger.InfoKV(ctx, "Copying platform overlay", "from", overlayDir, "to", scriptsDir)

	if err := cp.Copy(overlayDir, scriptsDir); err != nil {
		return fmt.Errorf("copy platform overlay: %w", err)
	}

	return nil
}
