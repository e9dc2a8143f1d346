package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
)

const (
	downloadChunkSize = 256 * 1024

	// progressInterval is the minimum gap between two progress callbacks.
	progressInterval = 500 * time.Millisecond
)

// Progress describes how far a download has come.
type Progress struct {
	Downloaded int64
	// Total is the expected size, or <= 0 when the server did not send one.
	Total int64
}

// Percent returns the completion percentage. ok is false when the total
// size is unknown and the progress is indeterminate.
func (p Progress) Percent() (pct int, ok bool) {
	if p.Total <= 0 {
		return 0, false
	}
	return int(p.Downloaded * 100 / p.Total), true
}

// ProgressFunc is called during download with progress info.
type ProgressFunc func(Progress)

// StatusFunc receives human-readable status lines.
type StatusFunc func(string)

// Downloader handles file downloads.
type Downloader struct {
	httpClient *http.Client
	now        func() time.Time
	metrics    *Metrics
}

// NewDownloader creates a Downloader whose requests give up after timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Download streams url into destPath. The file is synced to disk before
// Download returns nil; on error the partial file is removed.
func (d *Downloader) Download(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: download status %d", ErrNetwork, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: create file: %v", ErrFileSystem, err)
	}

	err = d.copy(out, resp.Body, resp.ContentLength, progress)
	if err == nil {
		if syncErr := out.Sync(); syncErr != nil {
			err = fmt.Errorf("%w: sync: %v", ErrFileSystem, syncErr)
		}
	}
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: close: %v", ErrFileSystem, closeErr)
	}
	if err != nil {
		os.Remove(destPath)
		logging.FromContext(ctx).Debug("Download aborted", "url", url, "error", err)
		return err
	}
	logging.FromContext(ctx).Debug("Download complete", "path", destPath, "bytes", resp.ContentLength)
	return nil
}

func (d *Downloader) copy(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	buf := make([]byte, downloadChunkSize)
	p := Progress{Total: total}
	var last time.Time

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("%w: write: %v", ErrFileSystem, err)
			}
			p.Downloaded += int64(n)
			d.metrics.addDownloaded(n)

			if now := d.now(); progress != nil && now.Sub(last) >= progressInterval {
				last = now
				progress(p)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("%w: read body: %v", ErrNetwork, readErr)
		}
	}

	if total > 0 && p.Downloaded < total {
		return fmt.Errorf("%w: short body: %d of %d bytes", ErrNetwork, p.Downloaded, total)
	}
	if progress != nil && total > 0 {
		progress(p)
	}
	return nil
}
