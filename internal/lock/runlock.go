// Package lock provides filesystem run locking for biograph.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLockHeld is returned when the run lock is already held by another
// biograph instance working against the same download root.
var ErrLockHeld = errors.New("run lock is held by another instance")

// RunLock prevents concurrent load runs against the same download root.
// It creates a lock file exclusively; the file records the holder's pid
// so stale locks from crashed processes can be detected and reclaimed.
type RunLock struct {
	rootDir  string
	lockName string
	held     bool
}

// NewRunLock creates a run lock for the given download root. The lock is
// not acquired until AcquireOrFail is called.
func NewRunLock(rootDir, name string) *RunLock {
	return &RunLock{
		rootDir:  rootDir,
		lockName: GenerateLockName(name),
	}
}

// GenerateLockName normalizes an operation name into a lock file name.
func GenerateLockName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
	return "biograph_" + safe + ".lock"
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return filepath.Join(l.rootDir, l.lockName)
}

// AcquireOrFail attempts to take the lock, returning ErrLockHeld when a
// live holder exists. A lock file whose recorded pid no longer runs is
// treated as stale and reclaimed.
func (l *RunLock) AcquireOrFail() error {
	if err := os.MkdirAll(l.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to prepare lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, writeErr := fmt.Fprintf(file, "%d\n", os.Getpid())
			closeErr := file.Close()
			if writeErr != nil || closeErr != nil {
				_ = os.Remove(l.Path())
				return fmt.Errorf("failed to write lock file: %w", errors.Join(writeErr, closeErr))
			}
			l.held = true
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		holder, readErr := l.holderPid()
		if readErr != nil {
			return ErrLockHeld
		}
		if pidAlive(holder) {
			return ErrLockHeld
		}

		// Stale lock from a crashed process: reclaim and retry once.
		if removeErr := os.Remove(l.Path()); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("failed to remove stale lock file: %w", removeErr)
		}
	}

	return ErrLockHeld
}

// ReleaseLock removes the lock file if this instance holds it.
func (l *RunLock) ReleaseLock() error {
	if !l.held {
		return nil
	}
	if err := os.Remove(l.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	l.held = false
	return nil
}

// IsHeld returns whether this instance currently holds the lock.
func (l *RunLock) IsHeld() bool {
	return l.held
}

// holderPid reads the pid recorded in the lock file.
func (l *RunLock) holderPid() (int, error) {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed lock file: %w", err)
	}
	return pid, nil
}

// pidAlive reports whether a process with the given pid exists. Signal 0
// performs the existence check without delivering a signal.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
