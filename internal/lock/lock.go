// Package lock provides root-directory-scoped mutual exclusion
// between install and query (spec §5): an O_CREATE|O_EXCL lock file
// guarded by an in-process sync.Mutex, with stale-lock detection via
// the recorded PID's liveness.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

const leafName = ".dingdef.lock"

// processMu serializes concurrent acquire attempts within this
// process, so two goroutines racing for the same root directory don't
// both pass the stale-lock check before either creates the lock file.
var processMu sync.Mutex

// Lock represents a held root-directory lock. Release must be called
// exactly once to remove the lock file.
type Lock struct {
	path string
}

// Acquire takes the lock for root, creating root if it does not yet
// exist. It returns an error if another live process (or another
// goroutine in this process) already holds it.
func Acquire(root string) (*Lock, error) {
	processMu.Lock()
	defer processMu.Unlock()

	if err := os.MkdirAll(root, 0o777); err != nil {
		return nil, fmt.Errorf("creating root directory: %w", err)
	}

	path := filepath.Join(root, leafName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) && clearStaleLock(path) {
			f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		}
		if err != nil {
			return nil, fmt.Errorf("root directory %s is already locked", root)
		}
	}

	fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()

	return &Lock{path: path}, nil
}

// Release removes the lock file so that another process, or another
// goroutine in this process, can acquire the same root directory.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}

// clearStaleLock removes the lock file at path if the PID it records
// no longer corresponds to a live process, and reports whether it did
// so (meaning a fresh acquire attempt is worth retrying).
func clearStaleLock(path string) bool {
	buf, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		return false
	}
	if processAlive(pid) {
		return false
	}
	return os.Remove(path) == nil
}

// processAlive reports whether pid refers to a running process. On
// POSIX systems, FindProcess always succeeds; signal 0 is the
// standard way to probe liveness without actually signaling it.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
