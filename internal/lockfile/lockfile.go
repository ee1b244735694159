// Package lockfile provides the advisory per-user lock that keeps a single
// borders daemon running.
package lockfile

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock is an exclusive flock on a file. The lock lives as long as the file
// descriptor, so it is released when the process exits.
type Lock struct {
	file *os.File
}

// Acquire opens path, creating it if needed, and takes an exclusive
// non-blocking lock on it.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open lock file %s", path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, errors.Wrapf(err, "failed to lock %s", path)
	}

	return &Lock{file: f}, nil
}

// Path returns the locked file's path.
func (l *Lock) Path() string {
	return l.file.Name()
}

// Release unlocks and closes the file. The file itself is left in place so
// a concurrent Acquire never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	defer func() { l.file = nil }()

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return errors.Wrap(err, "failed to unlock")
	}
	return errors.Wrap(l.file.Close(), "failed to close lock file")
}
