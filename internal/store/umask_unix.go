//go:build unix

package store

import (
	"sync"

	"golang.org/x/sys/unix"
)

var (
	umaskOnce sync.Once
	umaskVal  int
)

// umask returns the process umask. Reading it means setting it, so it is
// read once and restored immediately.
func umask() int {
	umaskOnce.Do(func() {
		umaskVal = unix.Umask(0o022)
		unix.Umask(umaskVal)
	})
	return umaskVal
}
