// Package cache implements a disk cache for compiled artifacts.
//
// Each entry is stored in its own file named after the key, holding the
// artifact as gzip compressed JSON. Keys are expected to fingerprint the
// content they describe, so concurrent writers of one key write the same
// bytes and no locking is done. The cache is trimmed once, when it is
// opened, by deleting the least recently used entries until the total size
// fits the configured budget.
package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultMaxSize is the default budget for the total size of the entries.
// It is a soft bound: filesystem overhead is not accounted for.
const DefaultMaxSize = 32 * 1024 * 1024

// Extension is appended to the key to form an entry's file name.
const Extension = ".rbjs.gz"

// Config configures a FileCache.
type Config struct {
	// Dir overrides the cache directory.
	Dir string
	// MaxSize is the size budget in bytes. Zero means DefaultMaxSize.
	MaxSize int64
	// Logger receives diagnostics. Nil discards them.
	Logger *zerolog.Logger
	// Registerer, when set, receives the cache metrics.
	Registerer prometheus.Registerer
}

// FileCache is a directory of compressed entries. A FileCache without a
// directory is disabled: every Get misses and every Set does nothing.
type FileCache struct {
	dir     string
	maxSize int64
	log     zerolog.Logger
	metrics *Metrics
}

// New opens the cache directory and trims it to the size budget. Failing
// to remove an entry while trimming is logged and does not fail New.
func New(cfg *Config) (*FileCache, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &FileCache{
		maxSize: cfg.MaxSize,
		log:     zerolog.Nop(),
		metrics: NewMetrics(cfg.Registerer),
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxSize
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "cache").Logger()
	}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: creating directory: %w", err)
		}
		c.dir = cfg.Dir
	} else {
		c.dir = FindDir(c.log)
	}
	if c.dir == "" {
		return c, nil
	}
	if err := c.tidyUp(); err != nil {
		c.log.Warn().Err(err).Str("dir", c.dir).Msg("could not evict every cache entry")
	}
	return c, nil
}

// Enabled reports whether the cache has a directory.
func (c *FileCache) Enabled() bool {
	return c.dir != ""
}

// Dir returns the cache directory, or "" when the cache is disabled.
func (c *FileCache) Dir() string {
	return c.dir
}

// Metrics returns the counters of the cache.
func (c *FileCache) Metrics() *Metrics {
	return c.metrics
}

func (c *FileCache) path(key string) (string, bool) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", false
	}
	return filepath.Join(c.dir, key+Extension), true
}

// Get loads the entry for key into v and reports whether it was found.
// Any failure to read, decompress or decode the entry is a miss and leaves
// the file as it was. A decoded entry has its access and modification
// times set to now.
func (c *FileCache) Get(key string, v any) bool {
	if !c.Enabled() {
		c.metrics.Misses.Inc()
		return false
	}
	file, ok := c.path(key)
	if !ok {
		c.metrics.Misses.Inc()
		return false
	}
	data, err := os.ReadFile(file)
	if err != nil {
		c.metrics.Misses.Inc()
		return false
	}
	if err := decode(data, v); err != nil {
		c.metrics.Corrupt.Inc()
		c.metrics.Misses.Inc()
		c.log.Debug().Err(err).Str("key", key).Msg("unreadable cache entry")
		return false
	}
	now := time.Now()
	if err := os.Chtimes(file, now, now); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("could not touch cache entry")
	}
	c.metrics.Hits.Inc()
	return true
}

// Set stores v under key. Writes are not atomic.
func (c *FileCache) Set(key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	file, ok := c.path(key)
	if !ok {
		return fmt.Errorf("cache: invalid key %q", key)
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("cache: encoding %q: %w", key, err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("cache: writing %q: %w", key, err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
