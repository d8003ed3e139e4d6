// Package assets downloads and unpacks the detector artifacts into the model directory.
package assets

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const defaultHTTPTimeout = 10 * time.Minute

// ErrNoURL is returned when no archive URL is configured.
var ErrNoURL = errors.New("assets: no download url configured")

// Progress receives downloaded and total bytes. total is -1 when unknown.
type Progress func(done, total int64)

// Fetcher downloads a zip archive and extracts it into a directory.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher with a bounded HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: defaultHTTPTimeout}}
}

// Fetch downloads url into dir, extracts every file entry and removes the
// archive. It is best effort: a partial extraction is not rolled back.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string, progress Progress) error {
	if strings.TrimSpace(url) == "" {
		return ErrNoURL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("assets: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "models-*.zip")
	if err != nil {
		return fmt.Errorf("assets: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = f.download(ctx, url, tmp, progress)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return Extract(tmp.Name(), dir)
}

func (f *Fetcher) download(ctx context.Context, url string, dst io.Writer, progress Progress) (int64, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("assets: get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("assets: unexpected status %d for %s", resp.StatusCode, url)
	}
	w := &progressWriter{dst: dst, total: resp.ContentLength, fn: progress}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("assets: download %s: %w", url, err)
	}
	return n, nil
}

type progressWriter struct {
	dst   io.Writer
	done  int64
	total int64
	fn    Progress
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.done += int64(n)
	if w.fn != nil {
		w.fn(w.done, w.total)
	}
	return n, err
}

// Extract unpacks the zip at path into dir. Entries resolving outside dir are rejected.
func Extract(path, dir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("assets: open archive: %w", err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for _, zf := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(zf.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("assets: illegal path in archive: %q", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("assets: open %s: %w", zf.Name, err)
	}
	defer rc.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("assets: extract %s: %w", zf.Name, err)
	}
	return out.Close()
}

// FormatProgress renders progress as "1.2 MB / 23 MB", or "1.2 MB" when total is unknown.
func FormatProgress(done, total int64) string {
	if done < 0 {
		done = 0
	}
	if total <= 0 {
		return humanize.Bytes(uint64(done))
	}
	return humanize.Bytes(uint64(done)) + " / " + humanize.Bytes(uint64(total))
}
