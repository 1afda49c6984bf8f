package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolve_EmptySelectsAll verifies that no arguments means every platform.
func TestResolve_EmptySelectsAll(t *testing.T) {
	t.Parallel()

	got := Resolve(context.Background(), nil)
	require.Equal(t, All(), got)
}

// TestResolve_SubsetKeepsOrder verifies only the requested platforms are selected.
func TestResolve_SubsetKeepsOrder(t *testing.T) {
	t.Parallel()

	got := Resolve(context.Background(), []string{"macos", "linux"})
	require.Equal(t, []Platform{MacOS, Linux}, got)
}

// TestResolve_SkipsUnknownTokens verifies invalid tokens are dropped, not fatal.
func TestResolve_SkipsUnknownTokens(t *testing.T) {
	t.Parallel()

	got := Resolve(context.Background(), []string{"linux", "solaris", "windows"})
	require.Equal(t, []Platform{Linux, Windows}, got)
}

// TestResolve_AllInvalidYieldsEmpty verifies an all-invalid selection degrades to an empty run.
func TestResolve_AllInvalidYieldsEmpty(t *testing.T) {
	t.Parallel()

	got := Resolve(context.Background(), []string{"beos", "plan9"})
	require.Empty(t, got)
}

// TestResolve_NormalizesTokens verifies case and whitespace are forgiven and duplicates dropped.
func TestResolve_NormalizesTokens(t *testing.T) {
	t.Parallel()

	got := Resolve(context.Background(), []string{" Windows ", "WINDOWS", "windows"})
	require.Equal(t, []Platform{Windows}, got)
}

// TestSpec_KnownPlatformsComplete ensures every supported platform carries full parameters.
func TestSpec_KnownPlatformsComplete(t *testing.T) {
	t.Parallel()

	for _, p := range All() {
		spec, ok := p.Spec()
		require.True(t, ok, p)
		require.NotEmpty(t, spec.DownloadURL, p)
		require.NotEmpty(t, spec.ArchiveName, p)
		require.NotEmpty(t, spec.ExtractFlags, p)
		require.NotEmpty(t, spec.SitePackagesDir, p)
	}

	_, ok := Platform("solaris").Spec()
	require.False(t, ok)
}
