package bundler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/portablepy/portable-bundler/internal/logger"
	"github.com/portablepy/portable-bundler/internal/platform"
)

// errBadHTTPStatus indicates the download endpoint answered with a non-OK status.
var errBadHTTPStatus = errors.New("unexpected http status")

// ensureArchiveCached returns the cache path of the platform's interpreter
// archive, downloading it first if absent. Presence is the only check: a
// cached file is trusted as-is, so the network is never touched on re-runs
// with a warm cache unless a refresh was requested.
func (r *runner) ensureArchiveCached(ctx context.Context, spec platform.Spec) (string, error) {
	archivePath := filepath.Join(r.cfg.CacheDir, spec.ArchiveName)

	if _, err := os.Stat(archivePath); err == nil {
		if !r.refresh {
			logger.InfoKV(ctx, "Using cached archive", "path", archivePath)
			return archivePath, nil
		}

		logger.InfoKV(ctx, "Refreshing cached archive", "path", archivePath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat cached archive: %w", err)
	}

	logger.InfoKV(ctx, "Downloading interpreter archive", "url", spec.DownloadURL)

	downloadCtx, cancel := context.WithTimeout(ctx, r.cfg.DownloadTimeout)
	defer cancel()

	temporaryFile, err := r.downloadToTemporaryFile(downloadCtx, spec.DownloadURL)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = os.Remove(temporaryFile)
	}()

	if err = commitArchive(temporaryFile, archivePath); err != nil {
		return "", fmt.Errorf("commit archive into cache: %w", err)
	}

	logger.InfoKV(ctx, "Archive cached", "path", archivePath)

	return archivePath, nil
}

// downloadToTemporaryFile streams the archive into a partial file next to its
// final cache location and returns the partial file's path.
func (r *runner) downloadToTemporaryFile(ctx context.Context, downloadURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return "", err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", downloadURL, response.Status, errBadHTTPStatus)
	}

	temporaryFile, err := os.CreateTemp(r.cfg.CacheDir, "download-*.partial")
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(temporaryFile, response.Body); err != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryFile.Name())

		return "", fmt.Errorf("download archive body: %w", err)
	}

	if err = temporaryFile.Close(); err != nil {
		return "", err
	}

	return temporaryFile.Name(), nil
}

// commitArchive publishes the downloaded file at its final cache path.
// A fresh entry is renamed into place, so an interrupted run leaves either
// no cache entry or a complete one, never a truncated archive that a later
// presence check would trust. An existing entry is swapped out through
// go-update's apply, which keeps the old archive valid until the rename.
func commitArchive(sourcePath, targetPath string) error {
	if _, err := os.Stat(targetPath); err == nil {
		return replaceArchive(sourcePath, targetPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.Rename(sourcePath, targetPath); err != nil {
		return err
	}

	return os.Chmod(targetPath, archiveFileMode)
}

// replaceArchive swaps an existing cache entry for the downloaded file.
func replaceArchive(sourcePath, targetPath string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}

	defer func() {
		_ = source.Close()
	}()

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: archiveFileMode,
	}
	if err = goupdate.Apply(source, options); err != nil {
		return err
	}

	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}
