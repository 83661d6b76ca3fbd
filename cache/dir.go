package cache

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

// EnvDir names the environment variable overriding the cache directory.
const EnvDir = "RBJS_CACHE_DIR"

var warnNoDir sync.Once

// FindDir returns the directory the cache should use, creating it when
// needed. It tries, in order, the directory named by RBJS_CACHE_DIR,
// ~/.cache/rbjs and a per-user directory under the system temporary
// directory, the latter only when that directory has the sticky bit set.
// When none is usable it logs a warning, once per process, and returns "".
func FindDir(log zerolog.Logger) string {
	if dir := os.Getenv(EnvDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	if home, err := homedir.Dir(); err == nil {
		if dir, ok := privateDir(home, ".cache", "rbjs"); ok {
			return dir
		}
	}
	tmp := os.TempDir()
	if sticky(tmp) {
		if dir, ok := privateDir(tmp, "rbjs-cache-"+os.Getenv("USER")); ok {
			return dir
		}
	}
	warnNoDir.Do(func() {
		log.Warn().Msgf("could not find a writable directory for the compile cache, set %s", EnvDir)
	})
	return ""
}

// privateDir creates base/elems... with owner only permissions. base must
// already exist and every existing component must be a directory.
func privateDir(base string, elems ...string) (string, bool) {
	if fi, err := os.Stat(base); err != nil || !fi.IsDir() {
		return "", false
	}
	dir := filepath.Join(append([]string{base}, elems...)...)
	for p := dir; p != base; p = filepath.Dir(p) {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return "", false
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", false
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", false
	}
	if !writable(dir) {
		return "", false
	}
	return dir, true
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func sticky(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir() && fi.Mode()&os.ModeSticky != 0
}
