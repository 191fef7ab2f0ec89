package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName = ".murmur.lock"
	lockTimeout  = 5 * time.Second
)

// lock acquires a file-based exclusive lock on the vault. It guards the
// existence-check-then-write sequence against concurrent writers.
func (s *Store) lock() (func(), error) {
	fullLockPath := filepath.Join(s.vaultPath, lockFileName)
	deadline := time.Now().Add(lockTimeout)

	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timed out waiting for vault lock %s", fullLockPath)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		return nil, fmt.Errorf("failed to acquire vault lock: %w", err)
	}
}
