package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// summarySchemaVersion is bumped whenever Summary changes shape; it is
// mixed into every cache key.
const summarySchemaVersion uint16 = 1

// ErrSchemaMismatch reports a cache entry written by another schema.
var ErrSchemaMismatch = errors.New("driver: summary cache schema mismatch")

// SummaryCache keeps collection summaries on disk keyed by the combined
// fixture digest. It is safe for concurrent use; a nil cache never hits.
type SummaryCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenSummaryCache prepares dir. An empty dir falls back to
// $XDG_CACHE_HOME/decc or ~/.cache/decc.
func OpenSummaryCache(dir string) (*SummaryCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "decc")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SummaryCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *SummaryCache) Dir() string { return c.dir }

func (c *SummaryCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "summaries", key.String()+".mp")
}

// Put writes s atomically under key.
func (c *SummaryCache) Put(key Digest, s *Summary) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	entry := cacheEntry{Schema: summarySchemaVersion, Summary: *s}
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the summary stored under key into out.
func (c *SummaryCache) Get(key Digest, out *Summary) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	var entry cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return false, err
	}
	if entry.Schema != summarySchemaVersion {
		return false, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, entry.Schema, summarySchemaVersion)
	}
	*out = entry.Summary
	return true, nil
}

// DropAll removes every cached summary.
func (c *SummaryCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "summaries"))
}

type cacheEntry struct {
	Schema  uint16  `msgpack:"schema"`
	Summary Summary `msgpack:"summary"`
}
