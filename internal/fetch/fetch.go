// Package fetch downloads remote resources over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/tuannm99/novarow/internal/alias/util"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Client wraps an http.Client. The zero value uses http.DefaultClient.
type Client struct {
	HTTP *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Fetch copies the body at url into w and returns the number of bytes written.
func (c *Client) Fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer util.CloseLogged(resp.Body, url)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: url, Status: resp.StatusCode}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	slog.Debug("fetch: done", "url", url, "size", humanize.Bytes(uint64(n)))
	return n, nil
}

// ToFile downloads url to path. The file only appears once the download is
// complete.
func (c *Client) ToFile(ctx context.Context, url, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := c.Fetch(ctx, url, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// TryFetch is Fetch for callers that only care whether it worked; failures are logged.
func (c *Client) TryFetch(ctx context.Context, url string, w io.Writer) bool {
	if _, err := c.Fetch(ctx, url, w); err != nil {
		slog.Warn("fetch: failed", "url", url, "err", err)
		return false
	}
	return true
}
