package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const openAppendFlags = os.O_CREATE | os.O_WRONLY | os.O_APPEND

// AcquireLock creates lockPath exclusively and returns a release func.
// A second acquisition fails until the first release. The lock file
// carries a random owner id for post-mortem diagnosis of stale locks.
func AcquireLock(fs afero.Fs, lockPath string) (release func() error, err error) {
	if err := fs.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, err
	}
	f, err := fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("another session is running (lock %s): %w", lockPath, err)
	}
	owner := uuid.New().String()
	_, _ = f.Write([]byte(owner + "\n"))
	_ = f.Close()
	return func() error { return fs.Remove(lockPath) }, nil
}
