package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipServer(t *testing.T, payload []byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()

	require.NotNil(t, config)
	assert.Equal(t, DefaultCacheTTL, config.CacheTTL)
	assert.False(t, config.SkipCache)
	assert.NotNil(t, config.Options)
}

func TestNewCachedFetcher_EmptyConfig(t *testing.T) {
	fetcher := NewCachedFetcher(&CachedFetcherConfig{})

	require.NotNil(t, fetcher)
	assert.Equal(t, DefaultCacheTTL, fetcher.cacheTTL)
	assert.NotNil(t, fetcher.options)

	assert.NotNil(t, NewCachedFetcher(nil).options)
}

func TestCachedFetcher_DownloadsThenReuses(t *testing.T) {
	var hits atomic.Int32
	server := zipServer(t, zipBytes(t, map[string]string{"Unihan_Readings.txt": sampleReadings}), &hits)
	zipPath := filepath.Join(t.TempDir(), "Unihan.zip")
	fetcher := NewCachedFetcher(nil)

	first, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	require.NotNil(t, first.State)
	assert.Len(t, first.State.Digest, 64)
	assert.Equal(t, server.URL, first.State.Source)

	second, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_RefetchesWhenStale(t *testing.T) {
	var hits atomic.Int32
	server := zipServer(t, zipBytes(t, map[string]string{"Unihan_Readings.txt": sampleReadings}), &hits)
	zipPath := filepath.Join(t.TempDir(), "Unihan.zip")

	fetcher := NewCachedFetcher(&CachedFetcherConfig{CacheTTL: time.Hour})
	_, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)

	fetcher.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	result, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_RefetchesWhenDigestChanges(t *testing.T) {
	var hits atomic.Int32
	server := zipServer(t, zipBytes(t, map[string]string{"Unihan_Readings.txt": sampleReadings}), &hits)
	zipPath := filepath.Join(t.TempDir(), "Unihan.zip")
	fetcher := NewCachedFetcher(nil)

	_, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)

	// Replace the archive with a different but valid zip
	require.NoError(t, os.WriteFile(zipPath, zipBytes(t, map[string]string{"other.txt": "x"}), 0o644))

	result, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_InvalidateCache(t *testing.T) {
	var hits atomic.Int32
	server := zipServer(t, zipBytes(t, map[string]string{"Unihan_Readings.txt": sampleReadings}), &hits)
	zipPath := filepath.Join(t.TempDir(), "Unihan.zip")
	fetcher := NewCachedFetcher(nil)

	_, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	require.NoError(t, fetcher.InvalidateCache(zipPath))
	assert.NoFileExists(t, StatePath(zipPath))
	require.NoError(t, fetcher.InvalidateCache(zipPath))

	// A valid zip without state is still reused
	result, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits atomic.Int32
	server := zipServer(t, zipBytes(t, map[string]string{"Unihan_Readings.txt": sampleReadings}), &hits)
	zipPath := filepath.Join(t.TempDir(), "Unihan.zip")
	fetcher := NewCachedFetcher(&CachedFetcherConfig{SkipCache: true})

	for i := 0; i < 2; i++ {
		result, err := fetcher.Fetch(context.Background(), server.URL, zipPath)
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_LocalSource(t *testing.T) {
	src := writeZip(t, t.TempDir(), map[string]string{"Unihan_Readings.txt": sampleReadings})
	zipPath := filepath.Join(t.TempDir(), "downloads", "Unihan.zip")

	result, err := NewCachedFetcher(nil).Fetch(context.Background(), src, zipPath)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.True(t, HasValidZip(zipPath))

	state, err := ReadState(zipPath)
	require.NoError(t, err)
	assert.Equal(t, src, state.Source)
}

func TestCachedFetcher_RejectsNonZip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not a zip</html>"))
	}))
	defer server.Close()

	_, err := NewCachedFetcher(nil).Fetch(context.Background(), server.URL, filepath.Join(t.TempDir(), "Unihan.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid zip")
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	digest, err := Digest(path)
	require.NoError(t, err)
	// BLAKE2b-256 of the empty input
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", digest)
}
