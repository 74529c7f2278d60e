package cache

import (
	"context"
	"time"
)

// NullCache backs the "null" backend and the --no-cache flag. Every lookup
// misses, so analyses and artifacts are recomputed on each request.
type NullCache struct{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

// Clear reports that nothing was removed.
func (NullCache) Clear(context.Context) (int, error) { return 0, nil }

func (NullCache) Close() error { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
