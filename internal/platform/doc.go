// Package platform enumerates the target operating systems a portable
// bundle can be assembled for and holds the parallel lookup tables that
// select each platform's download URL, archive name, archiver flags and
// site-packages layout.
package platform
