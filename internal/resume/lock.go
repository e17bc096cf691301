package resume

import (
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "shacheck/internal/errors"
)

// FileLock represents an acquired checkpoint lock.
type FileLock struct {
	path string
	file *os.File
}

// AcquireLock takes the lock file exclusively. A stale lock left by a
// crashed run is removed when breakLock is set.
func AcquireLock(path string, breakLock bool) (*FileLock, error) {
	if breakLock {
		_ = os.Remove(path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("checkpoint %s is in use: %w", path, apperrors.ErrLockBusy)
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	if err := writeLockBody(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return &FileLock{path: path, file: f}, nil
}

type lockWriter interface {
	WriteString(s string) (int, error)
	Sync() error
}

// writeLockBody records the owning process so a stale lock can be traced.
func writeLockBody(w lockWriter) error {
	body := "pid=" + strconv.Itoa(os.Getpid()) + "\n" +
		"time=" + time.Now().UTC().Format(time.RFC3339Nano) + "\n"
	if _, err := w.WriteString(body); err != nil {
		return err
	}
	return w.Sync()
}

// Release frees an acquired lock.
func (l *FileLock) Release() {
	if l == nil {
		return
	}
	if l.file != nil {
		_ = l.file.Close()
	}
	if l.path != "" {
		_ = os.Remove(l.path)
	}
}
