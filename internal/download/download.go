package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"slot-viewer/internal/photo"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"
	defaultTimeout   = 60 * time.Second
	// MaxBytes caps a downloaded photo, matching the detection service's upload limit.
	MaxBytes = 50 << 20
)

// ErrTooLarge is returned when a response body exceeds MaxBytes.
var ErrTooLarge = errors.New("download: photo larger than 50MB")

// IsURL reports whether location is an http or https URL rather than a local path.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetcher downloads photos over HTTP.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher. timeout <= 0 uses 60s.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the body of rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Read fetches location when it is a URL and reads it from disk otherwise.
func (f *Fetcher) Read(ctx context.Context, location string) ([]byte, error) {
	if IsURL(location) {
		return f.Fetch(ctx, location)
	}
	return photo.Read(location)
}

// FileName returns the last path element of rawURL without its query, or "download" when there is none.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		return "download"
	}
	return name
}
