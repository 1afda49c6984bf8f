package bundler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portablepy/portable-bundler/internal/config"
	"github.com/portablepy/portable-bundler/internal/platform"
)

// newAssembleFixture lays out an application source tree and returns a runner
// configured against it plus a fresh platform working directory.
func newAssembleFixture(t *testing.T) (*runner, string) {
	t.Helper()

	dir := t.TempDir()

	appDir := filepath.Join(dir, "myapp")
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "actions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "__init__.py"), []byte("VERSION = '1.0'\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "actions", "run.py"), []byte("pass\n"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.py"), []byte("# setup\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme\n"), 0o644))

	overlayDir := filepath.Join(dir, "scripts", "linux")
	require.NoError(t, os.MkdirAll(overlayDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(overlayDir, "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	workDir := filepath.Join(dir, "build", "linux")
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "python"), 0o755))

	r := &runner{
		cfg: &config.Config{
			AppPackage: appDir,
			SetupFile:  filepath.Join(dir, "setup.py"),
			ReadmeFile: filepath.Join(dir, "README.md"),
			ScriptsDir: filepath.Join(dir, "scripts"),
		},
	}

	return r, workDir
}

// TestAssembleBundle stages the overlay, application and metadata, and
// injects the package into site-packages.
func TestAssembleBundle(t *testing.T) {
	t.Parallel()

	r, workDir := newAssembleFixture(t)

	spec, ok := platform.Linux.Spec()
	require.True(t, ok)

	err := r.assembleBundle(context.Background(), platform.Linux, spec, workDir)
	require.NoError(t, err)

	// Overlay scripts landed under scripts/.
	_, err = os.Stat(filepath.Join(workDir, "scripts", "run.sh"))
	require.NoError(t, err)

	// Application, setup descriptor and README are staged under scripts/install/.
	staging := filepath.Join(workDir, "scripts", "install")
	for _, name := range []string{
		filepath.Join("myapp", "__init__.py"),
		filepath.Join("myapp", "actions", "run.py"),
		"setup.py",
		"README.md",
	} {
		_, err = os.Stat(filepath.Join(staging, name))
		require.NoError(t, err, name)
	}

	// The package is importable from the interpreter's site-packages.
	sitePkg := filepath.Join(workDir, filepath.FromSlash(spec.SitePackagesDir), "myapp")
	_, err = os.Stat(filepath.Join(sitePkg, "__init__.py"))
	require.NoError(t, err)
}

// TestAssembleBundle_MissingOverlayTolerated still produces a bundle when the
// platform has no overlay scripts.
func TestAssembleBundle_MissingOverlayTolerated(t *testing.T) {
	t.Parallel()

	r, workDir := newAssembleFixture(t)

	spec, ok := platform.MacOS.Spec()
	require.True(t, ok)

	// No scripts/macos directory exists in the fixture.
	err := r.assembleBundle(context.Background(), platform.MacOS, spec, workDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(workDir, "scripts", "install", "myapp", "__init__.py"))
	require.NoError(t, err)
}

// TestAssembleBundle_MissingAppPackageFails surfaces a clear error when the
// application source tree is absent.
func TestAssembleBundle_MissingAppPackageFails(t *testing.T) {
	t.Parallel()

	r, workDir := newAssembleFixture(t)
	r.cfg.AppPackage = filepath.Join(t.TempDir(), "nope")

	spec, ok := platform.Linux.Spec()
	require.True(t, ok)

	err := r.assembleBundle(context.Background(), platform.Linux, spec, workDir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stage application package")
}
