package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/rulegraph/pkg/observability"
)

func init() {
	retryDelay = time.Millisecond
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	key := NewDefaultKeyer().AnalysisKey(110, 2, AnalysisKeyOpts{})
	if err := c.Set(ctx, key, []byte(`{"rule":110}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, key); err != nil || hit || data != nil {
		t.Errorf("Get after Set = %q, hit %v, err %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete error: %v", err)
	}

	clearer, ok := c.(Clearer)
	if !ok {
		t.Fatal("NullCache should implement Clearer")
	}
	if n, err := clearer.Clear(ctx); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v; want 0, nil", n, err)
	}
}

// exerciseCache runs the behaviour every persistent backend shares.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "artifact:2:1"); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "artifact:2:1", []byte(`{"rule":1}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "artifact:2:1")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"rule":1}` {
		t.Errorf("Get = %q", data)
	}

	// zero TTL never expires
	if err := c.Set(ctx, "artifact:2:2", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:2:2"); !hit {
		t.Error("entry without TTL should be present")
	}

	if err := c.Delete(ctx, "artifact:2:1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:2:1"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}

	clearer, ok := c.(Clearer)
	if !ok {
		t.Fatal("backend should implement Clearer")
	}
	n, err := clearer.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "artifact:2:2"); hit {
		t.Error("entry should be gone after Clear")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestBadgerCache(t *testing.T) {
	c, err := NewBadgerCache("")
	if err != nil {
		t.Fatalf("NewBadgerCache error: %v", err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestBadgerCachePersistent(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	c, err := NewBadgerCache(dir)
	if err != nil {
		t.Fatalf("NewBadgerCache error: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get on closed cache error = %v, want ErrClosed", err)
	}

	c, err = NewBadgerCache(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer c.Close()
	if data, hit, _ := c.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Errorf("reopened Get = %q, hit %v", data, hit)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("RULEGRAPH_TEST_REDIS")
	if addr == "" {
		t.Skip("RULEGRAPH_TEST_REDIS not set")
	}
	c, err := NewRedisCache(context.Background(), RedisOptions{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()
	if _, err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 on loopback refuses connections.
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("NewRedisCache should fail for an unreachable server")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ak1 := k.AnalysisKey(110, 2, AnalysisKeyOpts{Steps: 51})
	ak2 := k.AnalysisKey(110, 2, AnalysisKeyOpts{Steps: 52})
	if ak1 == ak2 {
		t.Error("Different AnalysisKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "analysis:2:110:") {
		t.Errorf("AnalysisKey unexpected: %s", ak1)
	}
	if k.AnalysisKey(1, 2, AnalysisKeyOpts{}) == k.AnalysisKey(2, 1, AnalysisKeyOpts{}) {
		t.Error("rule and states should not be interchangeable")
	}

	svg := k.ArtifactKey(110, 2, ArtifactKeyOpts{Format: "svg"})
	dot := k.ArtifactKey(110, 2, ArtifactKeyOpts{Format: "dot"})
	if svg == dot {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(svg, "artifact:2:110:") {
		t.Errorf("ArtifactKey unexpected: %s", svg)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.ArtifactKey(30, 2, ArtifactKeyOpts{}); !strings.HasPrefix(got, "staging:artifact:2:30:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", got)
	}
	if got := scoped.AnalysisKey(30, 2, AnalysisKeyOpts{}); !strings.HasPrefix(got, "staging:analysis:") {
		t.Errorf("ScopedKeyer AnalysisKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().AnalysisKey(0, 3, AnalysisKeyOpts{})
	if key := scoped.AnalysisKey(0, 3, AnalysisKeyOpts{}); key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"analysis:2:110:abc":         "analysis",
		"artifact:2:110:abc":         "artifact",
		"staging:artifact:2:110:abc": "artifact",
		"something":                  "other",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestObserve(t *testing.T) {
	rec := &recordingCacheHooks{}
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	ctx := context.Background()
	inner, _ := NewBadgerCache("")
	c := Observe(inner)
	defer c.Close()

	_, _, _ = c.Get(ctx, "artifact:2:1")
	_ = c.Set(ctx, "artifact:2:1", []byte("abc"), 0)
	_, _, _ = c.Get(ctx, "artifact:2:1")

	if rec.misses != 1 || rec.hits != 1 || rec.bytes != 3 {
		t.Errorf("hooks saw %d misses, %d hits, %d bytes; want 1, 1, 3", rec.misses, rec.hits, rec.bytes)
	}
	if n, err := c.(Clearer).Clear(ctx); err != nil || n != 1 {
		t.Errorf("Clear through Observe = %d, %v", n, err)
	}
}

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, bytes int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.bytes += size
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{"", "null", "file", "badger"} {
		c, err := Open(ctx, Options{Backend: backend, Dir: dir, BadgerPath: filepath.Join(dir, "b")})
		if err != nil {
			t.Fatalf("Open(%q) error: %v", backend, err)
		}
		c.Close()
	}

	if _, err := Open(ctx, Options{Backend: "memcached"}); err == nil {
		t.Error("Open should reject unknown backends")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrClosed) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrClosed
	})
	if err != ErrClosed {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("got %v after %d calls, want ErrNetwork after 3", err, calls)
	}
}

func TestRetryWithBackoffKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return Retryable(ErrNetwork)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1 after cancellation", calls)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
