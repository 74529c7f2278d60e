package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Options selects a backend for [Open].
type Options struct {
	// Backend is one of "null", "file", "badger" or "redis".
	Backend string

	// Dir is the file cache directory. Empty means [DefaultDir].
	Dir string

	// BadgerPath is the Badger database directory. Empty means a "badger"
	// directory inside [DefaultDir].
	BadgerPath string

	Redis RedisOptions
}

// DefaultDir returns the per-user cache directory for rulegraph.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rulegraph"), nil
}

// Open creates the configured backend wrapped with [Observe].
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", "null":
		c = NewNullCache()
	case "file":
		dir := opts.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
		}
		c, err = NewFileCache(dir)
	case "badger":
		path := opts.BadgerPath
		if path == "" {
			dir, derr := DefaultDir()
			if derr != nil {
				return nil, fmt.Errorf("get cache dir: %w", derr)
			}
			path = filepath.Join(dir, "badger")
		}
		c, err = NewBadgerCache(path)
	case "redis":
		c, err = NewRedisCache(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Observe(c), nil
}
