package cache

import (
	"cmp"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
)

type entry struct {
	path  string
	size  int64
	mtime time.Time
	atime time.Time
}

func (c *FileCache) entries() ([]entry, int64, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*"+Extension))
	if err != nil {
		return nil, 0, err
	}
	var (
		out   []entry
		total int64
	)
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, entry{path: p, size: fi.Size(), mtime: fi.ModTime(), atime: accessTime(fi)})
		total += fi.Size()
	}
	return out, total, nil
}

// tidyUp deletes entries, oldest first by modification then access time,
// until the total size is within budget. The entry that brings the total
// within budget is deleted as well. A failed deletion is recorded and does
// not count towards the budget.
func (c *FileCache) tidyUp() error {
	entries, total, err := c.entries()
	if err != nil {
		return err
	}
	if total <= c.maxSize {
		return nil
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if n := a.mtime.Compare(b.mtime); n != 0 {
			return n
		}
		if n := a.atime.Compare(b.atime); n != 0 {
			return n
		}
		return cmp.Compare(a.path, b.path)
	})

	var result *multierror.Error
	for _, e := range entries {
		if total <= c.maxSize {
			break
		}
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result = multierror.Append(result, err)
			continue
		}
		total -= e.size
		c.metrics.Evictions.Inc()
		c.log.Debug().Str("file", e.path).Int64("size", e.size).Msg("evicted cache entry")
	}
	return result.ErrorOrNil()
}
