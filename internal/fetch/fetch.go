// Package fetch downloads per-corpus PDF files into a local folder tree.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CorpusURLs names one corpus and the file URLs to download for it.
type CorpusURLs struct {
	Name string
	URLs []string
}

// Fetcher downloads corpus files. Failed downloads are logged and skipped;
// files that already exist locally are never re-downloaded.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

// New creates a fetcher. client may be nil, in which case a default client
// with a 60s timeout is used.
func New(client *http.Client, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch downloads every corpus's files into dir/<corpus>/, creating folders as
// needed. The file name is the URL path's base name, with ".pdf" appended when
// missing. Download failures are logged and skipped. Returns an error only on
// ctx cancellation or when a destination folder cannot be created.
func (f *Fetcher) Fetch(ctx context.Context, corpora []CorpusURLs, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	for _, corpus := range corpora {
		corpusDir := filepath.Join(dir, corpus.Name)
		if err := os.MkdirAll(corpusDir, 0755); err != nil {
			return fmt.Errorf("create corpus dir %s: %w", corpusDir, err)
		}
		for _, rawURL := range corpus.URLs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f.fetchOne(ctx, rawURL, corpusDir); err != nil {
				f.logger.Error("download failed, skipping",
					zap.String("corpus", corpus.Name),
					zap.String("url", rawURL),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL, corpusDir string) error {
	name, err := FileName(rawURL)
	if err != nil {
		return err
	}
	dest := filepath.Join(corpusDir, name)
	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("file already exists, skipping", zap.String("path", dest))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("get: unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	f.logger.Debug("downloaded", zap.String("url", rawURL), zap.String("path", dest))
	return nil
}

// FileName derives the local file name for a download URL: the base name of
// the URL path, with ".pdf" appended when the extension is missing.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}
