// Package watchlock keeps two jazzmate processes from watching the same
// review at once. Each watch holds an advisory flock on a per-review file
// under the data directory for as long as it runs.
package watchlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/textutil"
)

// ErrAlreadyWatching is returned when another process holds the lock for the
// same review.
var ErrAlreadyWatching = errors.New("review is already being watched")

// Lock is a held per-review watch lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the watch lock for reviewID without blocking.
func Acquire(dir string, reviewID jazzmate.ID) (*Lock, error) {
	if reviewID.IsZero() {
		return nil, errors.New("review id is required")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("lock directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, fileName(reviewID))
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: review %s (lock %s)", ErrAlreadyWatching, reviewID, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func fileName(id jazzmate.ID) string {
	return "review-" + textutil.SanitizeToken(id.String()) + ".lock"
}
