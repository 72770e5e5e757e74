package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// FetchResult carries everything the extractor and persister need from one
// successful fetch.
type FetchResult struct {
	// Body is the raw response body, read through the size limit.
	Body []byte

	// StatusCode is the HTTP status code (always 2xx here).
	StatusCode int

	// ContentType is the declared MIME type, stripped of parameters.
	ContentType string

	// LastModified is the parsed Last-Modified header; zero when absent.
	LastModified time.Time
}

// Fetcher retrieves URLs and classifies the responses. It accepts only
// successful HTML responses; everything else is a rejection or a failure
// (see the package error taxonomy).
type Fetcher struct {
	// client performs the requests. Callers supply it so tests and the CLI
	// can configure timeouts without the Fetcher knowing about them.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how many bytes of the body are read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the response body read limit in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   "pagetree/1.0 (+https://github.com/yuseiito/pagetree)",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves a URL. Acceptance is checked in order: the status must
// be 2xx (otherwise ErrRejectedStatus), then the content type must declare
// HTML (otherwise ErrRejectedContentType). Transport-level faults come
// back as wrapped errors that fail IsRejected.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrRejectedStatus, resp.StatusCode, pageURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, fmt.Errorf("%w: %q for %s", ErrRejectedContentType, contentType, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", pageURL, err)
	}

	result := &FetchResult{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(contentType),
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			result.LastModified = t
		}
	}

	return result, nil
}

// isHTMLContentType reports whether a Content-Type header declares HTML.
// An absent header is not HTML; the page is rejected rather than sniffed.
func isHTMLContentType(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// mediaType strips parameters (charset etc.) from a Content-Type value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to a manual cut for slightly malformed headers.
		return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mt
}
