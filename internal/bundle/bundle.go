// Package bundle downloads a deployed version bundle and writes its files
// into the project directory.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/gqld/internal/debug"
)

// MaxSize caps the downloaded archive.
const MaxSize = 100 << 20

// maxExtracted caps the decompressed bytes written for one archive, summed
// over all entries.
var maxExtracted int64 = 4 * MaxSize

// Fetcher retrieves bundles over HTTP.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher with a bounded client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Fetcher{Client: client}
}

// Apply downloads the archive at url and extracts it into dir, overwriting
// existing files.
func (f *Fetcher) Apply(ctx context.Context, url, dir string) error {
	data, err := f.download(ctx, url)
	if err != nil {
		return err
	}
	n, err := Extract(data, dir)
	if err != nil {
		return err
	}
	debug.Logf("bundle: extracted %d files into %s\n", n, dir)
	return nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download bundle: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download bundle: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("download bundle: %w", err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("download bundle: archive exceeds %d bytes", MaxSize)
	}
	return data, nil
}

// Extract writes every file of the zip archive in data below dir and returns
// the number of files written. Entries escaping dir are rejected, and so are
// archives that decompress to more than the extraction limit.
func Extract(data []byte, dir string) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open bundle: %w", err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}

	written := 0
	remaining := maxExtracted
	for _, zf := range zr.File {
		target, err := safeJoin(root, zf.Name)
		if err != nil {
			return written, err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0750); err != nil {
				return written, err
			}
			continue
		}
		n, err := writeEntry(zf, target, remaining)
		if err != nil {
			return written, fmt.Errorf("extract %s: %w", zf.Name, err)
		}
		remaining -= n
		written++
	}
	return written, nil
}

func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("bundle entry %q has an absolute path", name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("bundle entry %q escapes the project directory", name)
	}
	return target, nil
}

// writeEntry copies at most limit bytes of zf to target. An entry with more
// data than that is an error, never a truncated file.
func writeEntry(zf *zip.File, target string, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return 0, err
	}
	rc, err := zf.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644) // #nosec G304 - target checked by safeJoin
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, err
	}
	if n > limit {
		return n, fmt.Errorf("bundle exceeds %d bytes uncompressed", maxExtracted)
	}
	return n, nil
}
