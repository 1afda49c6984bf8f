// Package bundler assembles portable, self-contained application bundles.
//
// For each selected platform it ensures the standalone interpreter archive
// is cached locally, extracts it with the host archiver into a fresh
// working directory, collapses the archive's nested install layout, then
// overlays platform scripts and injects the application package, setup
// descriptor and README into the bundle's install staging folder and
// site-packages directory.
//
// Platforms are processed strictly one after another; the first failure
// aborts the run. An instance marker in the cache directory keeps two
// bundlers from mutating the cache concurrently.
package bundler
