package httpfetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/repository"
)

func TestGetDecodesGzipAndSetsFingerprint(t *testing.T) {
	var gotUA, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html>shoes</html>"))
		_ = gz.Close()
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "speedsale-test/1.0", Timeout: 5 * time.Second})
	body, err := c.Get(context.Background(), srv.URL+"/sale")
	require.NoError(t, err)
	assert.Equal(t, "<html>shoes</html>", body)
	assert.Equal(t, "speedsale-test/1.0", gotUA)
	assert.Contains(t, gotEncoding, "br")
}

func TestGetDecodesBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte("brotli body"))
		_ = bw.Close()
	}))
	defer srv.Close()

	body, err := New(Options{}).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "brotli body", body)
}

func TestGetRespectsRobots(t *testing.T) {
	var pageHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		atomic.AddInt32(&pageHits, 1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Options{RespectRobots: true})

	_, err := c.Get(context.Background(), srv.URL+"/private/sale")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrBlockedByRobots)

	body, err := c.Get(context.Background(), srv.URL+"/public")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pageHits))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 2, RetryBackoff: time.Millisecond})
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetReportsClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(Options{MaxRetries: 3, RetryBackoff: time.Millisecond}).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.True(t, strings.Contains(err.Error(), "404"))
}

func TestFingerprintPoolRotates(t *testing.T) {
	pool := NewFingerprintPool("")
	first := pool.Next().UserAgent
	second := pool.Next().UserAgent
	assert.NotEqual(t, first, second)
}
