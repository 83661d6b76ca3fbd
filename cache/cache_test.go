package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type artifact struct {
	Result   string            `json:"result"`
	Requires []string          `json:"requires"`
	Options  map[string]string `json:"options"`
}

func newCache(t *testing.T, maxSize int64) *FileCache {
	t.Helper()
	c, err := New(&Config{Dir: t.TempDir(), MaxSize: maxSize})
	require.NoError(t, err)
	return c
}

func TestRoundTrip(t *testing.T) {
	c := newCache(t, 0)
	require.True(t, c.Enabled())

	in := artifact{Result: "console.log(1);\n", Requires: []string{"corelib"}, Options: map[string]string{"file": "a.rb"}}
	require.NoError(t, c.Set("abc123", in))
	require.FileExists(t, filepath.Join(c.Dir(), "abc123"+Extension))

	var out artifact
	require.True(t, c.Get("abc123", &out))
	require.Equal(t, in, out)
}

func TestMiss(t *testing.T) {
	c := newCache(t, 0)
	var out artifact
	require.False(t, c.Get("missing", &out))
	require.False(t, c.Get("../escape", &out))
	require.Error(t, c.Set("a/b", out))
	require.Error(t, c.Set("", out))
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(&Config{Dir: t.TempDir(), Registerer: reg})
	require.NoError(t, err)

	file := filepath.Join(c.Dir(), "bad"+Extension)
	garbage := []byte("definitely not gzip")
	require.NoError(t, os.WriteFile(file, garbage, 0o644))
	old := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(file, old, old))

	var out artifact
	require.False(t, c.Get("bad", &out))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, garbage, data, "corrupt entries are left in place")
	fi, err := os.Stat(file)
	require.NoError(t, err)
	require.True(t, fi.ModTime().Equal(old), "corrupt entries keep their times")
	require.Equal(t, 1.0, testutil.ToFloat64(c.Metrics().Corrupt))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Metrics().Misses))

	// valid gzip, invalid JSON
	raw, err := encode("x")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, raw, 0o644))
	require.False(t, c.Get("bad", &out))
	require.Equal(t, 2.0, testutil.ToFloat64(c.Metrics().Corrupt))
}

func TestGetTouchesEntry(t *testing.T) {
	c := newCache(t, 0)
	require.NoError(t, c.Set("k", artifact{}))
	file := filepath.Join(c.Dir(), "k"+Extension)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(file, old, old))

	var out artifact
	require.True(t, c.Get("k", &out))
	fi, err := os.Stat(file)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), fi.ModTime(), time.Minute)
	require.WithinDuration(t, time.Now(), accessTime(fi), time.Minute)
}

func writeEntry(t *testing.T, dir, key string, size int, age time.Duration) {
	t.Helper()
	file := filepath.Join(dir, key+Extension)
	require.NoError(t, os.WriteFile(file, make([]byte, size), 0o644))
	when := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(file, when, when))
}

func TestEvictionKeepsMostRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		// entry-0 is the oldest
		writeEntry(t, dir, fmt.Sprintf("entry-%d", i), 100, time.Duration(10-i)*time.Hour)
	}
	// unrelated files are neither counted nor removed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), make([]byte, 5000), 0o644))

	reg := prometheus.NewRegistry()
	c, err := New(&Config{Dir: dir, MaxSize: 450, Registerer: reg})
	require.NoError(t, err)

	entries, total, err := c.entries()
	require.NoError(t, err)
	require.LessOrEqual(t, total, int64(450))
	var kept []string
	for _, e := range entries {
		kept = append(kept, filepath.Base(e.path))
	}
	require.ElementsMatch(t, []string{
		"entry-6" + Extension, "entry-7" + Extension, "entry-8" + Extension, "entry-9" + Extension,
	}, kept)
	require.FileExists(t, filepath.Join(dir, "notes.txt"))
	require.Equal(t, 6.0, testutil.ToFloat64(c.Metrics().Evictions))
}

func TestEvictionOvershoot(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "old", 300, 2*time.Hour)
	writeEntry(t, dir, "new", 100, time.Hour)

	c, err := New(&Config{Dir: dir, MaxSize: 350})
	require.NoError(t, err)
	_, total, err := c.entries()
	require.NoError(t, err)
	require.Equal(t, int64(100), total, "the entry crossing the budget is removed too")
}

func TestNoEvictionWithinBudget(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a", 100, time.Hour)
	writeEntry(t, dir, "b", 100, 2*time.Hour)
	c, err := New(&Config{Dir: dir, MaxSize: 200})
	require.NoError(t, err)
	_, total, err := c.entries()
	require.NoError(t, err)
	require.Equal(t, int64(200), total)
}

func TestEvictionIsBestEffort(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	writeEntry(t, locked, "stuck", 100, 3*time.Hour)
	writeEntry(t, locked, "free", 100, time.Hour)
	writeEntry(t, locked, "other", 100, 2*time.Hour)
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	c := &FileCache{dir: locked, maxSize: 150, log: zerolog.Nop(), metrics: NewMetrics(nil)}
	err := c.tidyUp()
	require.Error(t, err)
	require.Contains(t, err.Error(), "3 errors occurred")
}

func TestDisabledCache(t *testing.T) {
	c := &FileCache{log: zerolog.Nop(), metrics: NewMetrics(nil)}
	require.False(t, c.Enabled())
	require.NoError(t, c.Set("k", artifact{Result: "x"}))
	var out artifact
	require.False(t, c.Get("k", &out))
	require.Equal(t, "", c.Dir())
}

func TestFindDir(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	envDir := filepath.Join(t.TempDir(), "from-env")
	t.Setenv(EnvDir, envDir)
	require.Equal(t, envDir, FindDir(zerolog.Nop()))
	require.DirExists(t, envDir)

	home := t.TempDir()
	t.Setenv(EnvDir, "")
	t.Setenv("HOME", home)
	dir := FindDir(zerolog.Nop())
	require.Equal(t, filepath.Join(home, ".cache", "rbjs"), dir)
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
}

func TestPrivateDirRejectsFiles(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, ".cache"), nil, 0o644))
	_, ok := privateDir(base, ".cache", "rbjs")
	require.False(t, ok)

	_, ok = privateDir(filepath.Join(base, "missing"), "x")
	require.False(t, ok)
}

func TestMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)
	a.Hits.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(b.Hits))
}
