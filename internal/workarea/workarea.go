// Package workarea owns the temporary directory holding a run's intermediate artifacts.
package workarea

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xll-gen/implib/internal/errs"
)

// Area is a temporary directory acquired once per run and released exactly once.
type Area struct {
	dir    string
	keep   bool
	logger *slog.Logger

	releaseOnce sync.Once
	releaseErr  error
}

// Acquire creates a fresh temporary directory under the system temp root.
// If keep is true, Release leaves the directory on disk for inspection.
func Acquire(logger *slog.Logger, keep bool) (*Area, error) {
	dir, err := os.MkdirTemp("", "implib-")
	if err != nil {
		return nil, errs.Filesystem("creating temporary directory", os.TempDir(), err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	logger.Info("Created temporary directory", "dir", dir)
	return &Area{dir: dir, keep: keep, logger: logger}, nil
}

// Dir returns the absolute path of the working area.
func (a *Area) Dir() string {
	return a.dir
}

// Release deletes the working area unless it is being kept.
// Safe to call multiple times; later calls return the first call's result.
func (a *Area) Release() error {
	a.releaseOnce.Do(func() {
		if a.keep {
			a.logger.Info("Keeping temporary directory", "dir", a.dir)
			return
		}
		if err := os.RemoveAll(a.dir); err != nil {
			a.releaseErr = errs.Filesystem("deleting temporary directory", a.dir, err)
			return
		}
		a.logger.Info("Deleted temporary directory", "dir", a.dir)
	})
	return a.releaseErr
}
