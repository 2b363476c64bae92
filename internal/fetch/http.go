// Package fetch retrieves upstream documents (exports, quote pages, feeds)
// as text, with per-request timeouts, per-host rate limits and retries.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/ternarybob/arbor"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"github.com/ternarybob/gapper/internal/common"
)

// maxBodyBytes bounds how much of a response is read
const maxBodyBytes = 8 << 20

// StatusError is a non-2xx upstream response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.URL)
}

// Retryable reports whether repeating the request may succeed
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures an HTTPFetcher
type Options struct {
	Timeout        time.Duration
	UserAgent      string
	RequestsPerSec float64
	MaxRetries     int
	RetryInterval  time.Duration
}

// OptionsFromConfig maps the [sources] config section
func OptionsFromConfig(config common.SourcesConfig) Options {
	return Options{
		Timeout:        common.ParseDurationOr(config.RequestTimeout, 10*time.Second),
		UserAgent:      config.UserAgent,
		RequestsPerSec: config.RequestsPerSec,
		MaxRetries:     config.MaxRetries,
		RetryInterval:  500 * time.Millisecond,
	}
}

// HTTPFetcher performs GET requests
type HTTPFetcher struct {
	client   *http.Client
	options  Options
	logger   arbor.ILogger
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a fetcher. Each request is bounded by the timeout.
func NewHTTPFetcher(options Options, logger arbor.ILogger) *HTTPFetcher {
	if options.Timeout <= 0 {
		options.Timeout = 10 * time.Second
	}
	if options.RetryInterval <= 0 {
		options.RetryInterval = 500 * time.Millisecond
	}
	if options.MaxRetries < 0 {
		options.MaxRetries = 0
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: options.Timeout,
		},
		options:  options,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch returns the body of rawURL as text. A byte order mark is removed and
// bodies that are not valid UTF-8 are decoded as Windows-1252.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.options.RetryInterval
	policy.MaxElapsedTime = 0

	var body string
	attempt := 0
	operation := func() error {
		attempt++
		if err := f.wait(ctx, parsed.Host); err != nil {
			return backoff.Permanent(err)
		}

		text, err := f.get(ctx, rawURL)
		if err == nil {
			body = text
			return nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		f.logger.Debug().
			Err(err).
			Str("url", rawURL).
			Int("attempt", attempt).
			Msg("Fetch failed, retrying")
		return err
	}

	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.options.MaxRetries)), ctx)
	if err := backoff.Retry(operation, retry); err != nil {
		return "", err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if f.options.UserAgent != "" {
		req.Header.Set("User-Agent", f.options.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml,text/csv,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return Decode(data, resp.Header.Get("Content-Type")), nil
}

// wait blocks on the limiter for host
func (f *HTTPFetcher) wait(ctx context.Context, host string) error {
	if f.options.RequestsPerSec <= 0 {
		return nil
	}

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		burst := int(f.options.RequestsPerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(f.options.RequestsPerSec), burst)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

// Decode converts a response body to a string. A declared latin-1 charset
// or invalid UTF-8 is decoded with Windows-1252, a superset of latin-1.
func Decode(data []byte, contentType string) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	charset := strings.ToLower(contentType)
	latin := strings.Contains(charset, "iso-8859-1") || strings.Contains(charset, "latin1") ||
		strings.Contains(charset, "windows-1252")

	if latin || !utf8.Valid(data) {
		if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			return string(decoded)
		}
	}
	return string(data)
}
