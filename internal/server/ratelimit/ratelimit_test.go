package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock lets tests move time forward by hand
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, config *Config) (*Limiter, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute})

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("127.0.0.1", "/characters/U+4E00", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/characters/U+4E00", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(20*time.Second), float64(info.RetryAfter), float64(time.Millisecond))
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("c", "/runs", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/runs", "GET")
	require.False(t, allowed)

	clock.advance(30 * time.Second)
	allowed, _ = l.Allow("c", "/runs", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/runs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_NewBucketStartsAtBurst(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	// first use, two days in: the bucket holds exactly its burst of 2
	clock.advance(48 * time.Hour)
	allowed, info := l.Allow("late", "/builds/stream", "POST")
	require.True(t, allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestLimiter_SeparateClients(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	allowed, _ := l.Allow("a", "/runs", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/runs", "GET")
	assert.False(t, allowed)

	allowed, _ = l.Allow("b", "/runs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_EndpointConfig(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("c", "/builds/stream", "POST")
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, info := l.Allow("c", "/builds/stream", "POST")
	assert.False(t, allowed)
	assert.InDelta(t, float64(6*time.Minute), float64(info.RetryAfter), float64(time.Millisecond))

	// Other endpoints use their own buckets
	allowed, _ = l.Allow("c", "/runs", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Bypass(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		client  string
		path    string
		allowed bool
	}{
		{
			name:    "disabled",
			config:  &Config{Enabled: false},
			client:  "c",
			path:    "/runs",
			allowed: true,
		},
		{
			name:    "whitelisted",
			config:  &Config{Enabled: true, DefaultLimit: 0, Whitelist: map[string]bool{"10.0.0.1": true}},
			client:  "10.0.0.1",
			path:    "/runs",
			allowed: true,
		},
		{
			name:    "blacklisted",
			config:  &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute, Blacklist: map[string]bool{"10.0.0.2": true}},
			client:  "10.0.0.2",
			path:    "/health",
			allowed: false,
		},
		{
			name:    "health is unlimited",
			config:  &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute},
			client:  "c",
			path:    "/health",
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(t, tt.config)
			for i := 0; i < 5; i++ {
				allowed, _ := l.Allow(tt.client, tt.path, "GET")
				assert.Equal(t, tt.allowed, allowed)
			}
			assert.Zero(t, l.Len())
		})
	}
}

func TestLimiter_CleanupIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTimeout: time.Minute})

	l.Allow("old", "/runs", "GET")
	clock.advance(2 * time.Minute)
	l.Allow("new", "/runs", "GET")
	require.Equal(t, 2, l.Len())

	l.cleanupBuckets()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/runs", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowedCount)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{name: "exact", path: "/builds/stream", method: "POST", want: "/builds/stream"},
		{name: "prefix", path: "/runs/123", method: "DELETE", want: "/runs/"},
		{name: "method mismatch", path: "/runs/123", method: "GET", want: ""},
		{name: "no match", path: "/fields", method: "GET", want: ""},
		{name: "health", path: "/health", method: "GET", want: "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")

	config := LoadConfig()
	assert.True(t, config.Enabled)
	assert.Equal(t, 42, config.DefaultLimit)
	assert.Equal(t, 30*time.Second, config.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, config.Whitelist)
	assert.Empty(t, config.Blacklist)
	assert.NotEmpty(t, config.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
