package platform

import (
	"context"
	"strings"

	"github.com/portablepy/portable-bundler/internal/logger"
)

// Platform identifies a target operating system for a portable bundle.
type Platform string

// Supported target platforms.
const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
)

// Spec carries the per-platform download and layout parameters.
type Spec struct {
	// DownloadURL is the hard-coded location of the standalone interpreter archive.
	DownloadURL string
	// ArchiveName is the cache filename of the archive.
	ArchiveName string
	// ExtractFlags are passed to the host archiver ahead of the archive path.
	ExtractFlags []string
	// SitePackagesDir is the bundle-relative path of the interpreter's
	// site-packages directory.
	SitePackagesDir string
}

// Interpreter release pinned for all platforms. The standalone builds ship
// as zstd-compressed tarballs whose top-level python/ directory nests the
// actual runtime under install/.
const (
	pythonVersion = "3.10.11"
	releaseTag    = "20230507"
	releaseBase   = "https://github.com/indygreg/python-build-standalone/releases/download/" + releaseTag + "/"
)

//nolint:gochecknoglobals // Fixed lookup tables keyed by platform.
var specs = map[Platform]Spec{
	Windows: {
		DownloadURL:     releaseBase + "cpython-" + pythonVersion + "+" + releaseTag + "-x86_64-pc-windows-msvc-shared-pgo-full.tar.zst",
		ArchiveName:     "cpython-" + pythonVersion + "-windows.tar.zst",
		ExtractFlags:    []string{"--zstd", "-x", "-f"},
		SitePackagesDir: "python/Lib/site-packages",
	},
	Linux: {
		DownloadURL:     releaseBase + "cpython-" + pythonVersion + "+" + releaseTag + "-x86_64-unknown-linux-gnu-pgo+lto-full.tar.zst",
		ArchiveName:     "cpython-" + pythonVersion + "-linux.tar.zst",
		ExtractFlags:    []string{"--zstd", "-x", "-f"},
		SitePackagesDir: "python/lib/python3.10/site-packages",
	},
	MacOS: {
		DownloadURL:     releaseBase + "cpython-" + pythonVersion + "+" + releaseTag + "-x86_64-apple-darwin-pgo+lto-full.tar.zst",
		ArchiveName:     "cpython-" + pythonVersion + "-macos.tar.zst",
		ExtractFlags:    []string{"--zstd", "-x", "-f"},
		SitePackagesDir: "python/lib/python3.10/site-packages",
	},
}

// All returns every supported platform in stable order.
func All() []Platform {
	return []Platform{Windows, Linux, MacOS}
}

// Spec returns the download and layout parameters for the platform.
// The second return value reports whether the platform is supported.
func (p Platform) Spec() (Spec, bool) {
	spec, ok := specs[p]
	return spec, ok
}

// String returns the platform token.
func (p Platform) String() string {
	return string(p)
}

// Resolve maps command-line tokens to supported platforms.
// Unknown tokens are skipped with a warning, duplicates are dropped, and an
// empty token list selects every platform. An entirely invalid list resolves
// to zero platforms without an error.
func Resolve(ctx context.Context, tokens []string) []Platform {
	if len(tokens) == 0 {
		return All()
	}

	seen := make(map[Platform]struct{}, len(specs))
	selected := make([]Platform, 0, len(tokens))

	for _, token := range tokens {
		p := Platform(strings.ToLower(strings.TrimSpace(token)))
		if _, ok := specs[p]; !ok {
			logger.WarnKV(ctx, "Skipping unsupported platform", "token", token)
			continue
		}

		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}
		selected = append(selected, p)
	}

	return selected
}
