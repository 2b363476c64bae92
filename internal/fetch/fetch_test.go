package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
)

func newFetcher(retries int) *HTTPFetcher {
	return NewHTTPFetcher(Options{
		Timeout:       2 * time.Second,
		UserAgent:     "gapper-test",
		MaxRetries:    retries,
		RetryInterval: 10 * time.Millisecond,
	}, arbor.NewLogger())
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gapper-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("\xef\xbb\xbfTicker,Price\nABC,1.5\n"))
	}))
	defer server.Close()

	body, err := newFetcher(0).Fetch(context.Background(), server.URL+"/export.csv")
	require.NoError(t, err)
	assert.Equal(t, "Ticker,Price\nABC,1.5\n", body)
}

func TestHTTPFetcher_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newFetcher(3).Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := newFetcher(2).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPFetcher_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newFetcher(1).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(Options{Timeout: 100 * time.Millisecond}, arbor.NewLogger())
	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	_, err := newFetcher(0).Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "plain", Decode([]byte("plain"), "text/html; charset=utf-8"))
	assert.Equal(t, "Café", Decode([]byte("Caf\xe9"), "text/html"))
	assert.Equal(t, "Café", Decode([]byte("Caf\xe9"), "text/html; charset=ISO-8859-1"))
	assert.Equal(t, "x", Decode([]byte("\xef\xbb\xbfx"), ""))
}

func TestOptionsFromConfig(t *testing.T) {
	options := OptionsFromConfig(common.NewDefaultConfig().Sources)
	assert.Equal(t, 10*time.Second, options.Timeout)
	assert.Equal(t, 4.0, options.RequestsPerSec)
	assert.Equal(t, 2, options.MaxRetries)

	browser := BrowserOptionsFromConfig(common.NewDefaultConfig().Sources)
	assert.Equal(t, 2*time.Second, browser.WaitTime)
}

func TestBrowserFetcher_CloseWithoutStart(t *testing.T) {
	fetcher := NewBrowserFetcher(BrowserOptions{}, arbor.NewLogger())
	assert.NoError(t, fetcher.Close())
}
