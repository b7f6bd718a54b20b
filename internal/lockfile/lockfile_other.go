//go:build !unix

package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/versecue/internal/constants"
)

// Lock is a held state directory lock. Without flock the lock file is
// created exclusively and a stale file must be removed by hand.
type Lock struct {
	file *os.File
	path string
}

func Acquire(stateDir string) (*Lock, error) {
	return AcquireNamed(stateDir, constants.StateLockFileName)
}

// AcquireNamed takes the lock stored in stateDir/name.
func AcquireNamed(stateDir, name string) (*Lock, error) {
	lockPath := filepath.Join(stateDir, name)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &LockError{LockPath: lockPath, Cause: err}
	}
	_, _ = fmt.Fprintf(file, "pid=%d\n", os.Getpid())
	return &Lock{file: file, path: lockPath}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.file.Close()
	l.file = nil
	return os.Remove(l.path)
}

func (l *Lock) Path() string { return l.path }

type LockError struct {
	LockPath string
	Holder   string
	Cause    error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("another versecue process holds %s", e.LockPath)
}

func (e *LockError) Unwrap() error { return e.Cause }
