//go:build !linux && !darwin

package cache

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where the access time is
// not exposed.
func accessTime(fi fs.FileInfo) time.Time {
	return fi.ModTime()
}
