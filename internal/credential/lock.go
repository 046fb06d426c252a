package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LockStaleAfter is the age at which an auth lock is assumed abandoned.
const LockStaleAfter = 5 * time.Minute

// ErrLocked means another interactive login holds the auth lock.
var ErrLocked = errors.New("another login is in progress")

// Lock is a held auth lock. The file holds the acquisition time as Unix
// seconds and an owner token.
type Lock struct {
	path  string
	owner string
}

// AcquireLock takes the auth lock at path. A lock older than
// LockStaleAfter, or one whose content cannot be read, is broken.
func AcquireLock(path string, now time.Time) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	owner := uuid.NewString()
	content := fmt.Sprintf("%d %s\n", now.Unix(), owner)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(content)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, owner: owner}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create lock: %w", err)
		}

		held, _, ok := readLock(path)
		if ok && now.Sub(held) < LockStaleAfter {
			return nil, fmt.Errorf("%w (started %s ago)", ErrLocked, now.Sub(held).Round(time.Second))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to break stale lock: %w", err)
		}
	}
	return nil, ErrLocked
}

// Release removes the lock if this holder still owns it.
func (l *Lock) Release() error {
	_, owner, ok := readLock(l.path)
	if !ok || owner != l.owner {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func readLock(path string) (time.Time, string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, "", false
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return time.Time{}, "", false
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return time.Time{}, "", false
	}
	owner := ""
	if len(fields) > 1 {
		owner = fields[1]
	}
	return time.Unix(secs, 0), owner, true
}
