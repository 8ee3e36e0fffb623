package description

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/muurk/ssdpscan/internal/logging"
	"github.com/muurk/ssdpscan/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultFetchTimeout bounds one description GET
	DefaultFetchTimeout = 10 * time.Second

	// MaxDocumentSize caps the bytes read from a description response
	MaxDocumentSize = 1 << 20
)

// Fetcher retrieves a description document
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a non-2xx response to a description GET
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPFetcher fetches descriptions over HTTP
type HTTPFetcher struct {
	// Client is the underlying HTTP client
	Client *http.Client

	// UserAgent is sent with every request (default: version.UserAgent())
	UserAgent string
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
// A zero timeout selects DefaultFetchTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: version.UserAgent(),
	}
}

// Fetch GETs url and returns the body of a 2xx response
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	ua := f.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	req.Header.Set("User-Agent", ua)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read description from %s: %w", url, err)
	}

	logging.Debug("Fetched description",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return body, nil
}
