package fetch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/unihan-tabular/internal/logging"
)

// DefaultCacheTTL is how long a downloaded archive is reused. Zero would
// mean forever; UNIDATA is republished with each Unicode release.
const DefaultCacheTTL = 30 * 24 * time.Hour

// CacheState is stored next to the archive as <zip>.state.json and records
// where the archive came from and its digest at download time.
type CacheState struct {
	Source    string    `json:"source"`
	Digest    string    `json:"blake2b_256"`
	Bytes     int64     `json:"bytes"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedFetcher fetches Unihan.zip unless a valid, fresh, unmodified copy
// already sits at the destination.
type CachedFetcher struct {
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
	now       func() time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		now:       time.Now,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
	State     *CacheState
}

// Fetch makes sure a valid archive from source exists at zipPath. source
// is an http(s) URL or a local file path. A cached archive is reused when
// it opens as a zip, came from the same source, is younger than the TTL and
// still matches its recorded digest. An archive without a state file is
// reused as long as it is a valid zip.
func (f *CachedFetcher) Fetch(ctx context.Context, source, zipPath string) (*CachedResult, error) {
	logger := logging.FromContext(ctx)

	if !f.skipCache && HasValidZip(zipPath) {
		state, err := ReadState(zipPath)
		switch {
		case os.IsNotExist(err):
			logger.Info("reusing existing archive", "path", zipPath)
			return &CachedResult{Result: &Result{URL: source, Path: zipPath}, FromCache: true}, nil
		case err != nil:
			logger.Warn("ignoring unreadable cache state", "path", zipPath, "error", err)
		case f.fresh(state, source, zipPath):
			logger.Info("reusing cached archive", "path", zipPath, "fetched_at", state.FetchedAt)
			return &CachedResult{
				Result:    &Result{URL: source, Path: zipPath, Bytes: state.Bytes},
				FromCache: true,
				State:     state,
			}, nil
		}
	}

	var result *Result
	var err error
	if isRemote(source) {
		logger.Info("downloading archive", "url", source, "dest", zipPath)
		result, err = Download(ctx, source, zipPath, f.options)
	} else {
		logger.Info("copying archive", "src", source, "dest", zipPath)
		result, err = Copy(source, zipPath)
	}
	if err != nil {
		return nil, err
	}
	if !HasValidZip(zipPath) {
		return nil, &Error{URL: source, Message: "downloaded file is not a valid zip archive"}
	}

	digest, err := Digest(zipPath)
	if err != nil {
		return nil, err
	}
	state := &CacheState{
		Source:    source,
		Digest:    digest,
		Bytes:     result.Bytes,
		FetchedAt: f.now().UTC(),
	}
	if err := WriteState(zipPath, state); err != nil {
		logger.Warn("failed to write cache state", "path", zipPath, "error", err)
	}

	return &CachedResult{Result: result, FromCache: false, State: state}, nil
}

func (f *CachedFetcher) fresh(state *CacheState, source, zipPath string) bool {
	if state.Source != source {
		return false
	}
	if f.now().Sub(state.FetchedAt) > f.cacheTTL {
		return false
	}
	digest, err := Digest(zipPath)
	if err != nil {
		return false
	}
	return digest == state.Digest
}

// InvalidateCache removes the state file so the next Fetch downloads again.
func (f *CachedFetcher) InvalidateCache(zipPath string) error {
	err := os.Remove(StatePath(zipPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Digest returns the hex BLAKE2b-256 digest of the file at path.
func Digest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// StatePath returns the cache state file path for an archive
func StatePath(zipPath string) string {
	return zipPath + ".state.json"
}

// ReadState loads the cache state of an archive
func ReadState(zipPath string) (*CacheState, error) {
	data, err := os.ReadFile(StatePath(zipPath))
	if err != nil {
		return nil, err
	}
	var state CacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", StatePath(zipPath), err)
	}
	return &state, nil
}

// WriteState stores the cache state of an archive
func WriteState(zipPath string, state *CacheState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(StatePath(zipPath), data, 0o644)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
