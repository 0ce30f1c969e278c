package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// errExchangeUnsupported means the platform or filesystem cannot swap two
// paths in one operation.
var errExchangeUnsupported = errors.New("atomic exchange not supported")

// Replaced in tests.
var (
	osRename = os.Rename
	exchange = exchangePaths
)

// versionsDir holds one directory per published bundle of destination.
func versionsDir(destination string) string {
	return filepath.Join(filepath.Dir(destination), "."+filepath.Base(destination)+".bundles")
}

// publish makes staged live as destination with a single rename.
//
// destination is a symlink into versionsDir(destination). staged is moved
// there under a new version name, a fresh link to it is created next to
// destination and renamed over it, so a reader resolves either the previous
// bundle or the new one and never a missing or partial directory. The
// previous version is kept for readers that resolved it just before the
// swap; older ones are removed.
//
// A destination that is still a plain directory is exchanged with the link
// in one step where the filesystem allows it. Elsewhere it is moved aside
// once and restored if the swap fails; later publishes are single renames.
func publish(staged, destination string, logger *slog.Logger) error {
	destination = filepath.Clean(destination)
	store := versionsDir(destination)

	if err := os.MkdirAll(store, 0o755); err != nil {
		return &ExtractionError{Op: "publish", Path: store, Err: err}
	}

	name := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + uuid.NewString()[:8]
	version := filepath.Join(store, name)
	if err := osRename(staged, version); err != nil {
		removeIfEmpty(store)
		return &ExtractionError{Op: "publish", Path: destination, Err: fmt.Errorf("store version: %w", err)}
	}

	previous := linkedVersion(destination, store)

	link := filepath.Join(filepath.Dir(destination), fmt.Sprintf(".%s.link-%s", filepath.Base(destination), name))
	target := filepath.Join(filepath.Base(store), name)
	if err := os.Symlink(target, link); err != nil {
		discardVersion(version, store, logger)
		return &ExtractionError{Op: "publish", Path: destination, Err: fmt.Errorf("create link: %w", err)}
	}

	if err := swap(link, destination, logger); err != nil {
		if rerr := os.Remove(link); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			logger.Warn("failed to remove link", "path", link, "error", rerr)
		}
		discardVersion(version, store, logger)
		return &ExtractionError{Op: "publish", Path: destination, Err: err}
	}

	prune(store, logger, name, previous)
	return nil
}

// swap replaces destination with link.
func swap(link, destination string, logger *slog.Logger) error {
	fi, err := os.Lstat(destination)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return osRename(link, destination)
	case err != nil:
		return err
	case fi.Mode()&fs.ModeSymlink != 0:
		return osRename(link, destination)
	}

	err = exchange(link, destination)
	if err == nil {
		// link now names the old directory.
		if err := os.RemoveAll(link); err != nil {
			logger.Warn("failed to remove previous bundle", "path", link, "error", err)
		}
		return nil
	}
	if !errors.Is(err, errExchangeUnsupported) {
		return fmt.Errorf("exchange: %w", err)
	}

	logger.Warn("replacing plain bundle directory in two steps", "dir", destination, "reason", err)

	backup := fmt.Sprintf("%s.previous-%d", destination, time.Now().UnixNano())
	if err := osRename(destination, backup); err != nil {
		return fmt.Errorf("move aside: %w", err)
	}
	if err := osRename(link, destination); err != nil {
		if rerr := osRename(backup, destination); rerr != nil {
			logger.Error("failed to restore previous bundle", "backup", backup, "error", rerr)
		}
		return err
	}
	if err := os.RemoveAll(backup); err != nil {
		logger.Warn("failed to remove previous bundle", "path", backup, "error", err)
	}
	return nil
}

// linkedVersion returns the version destination points to, or "" when it is
// not a link into store.
func linkedVersion(destination, store string) string {
	target, err := os.Readlink(destination)
	if err != nil {
		return ""
	}
	if filepath.Dir(target) != filepath.Base(store) {
		return ""
	}
	return filepath.Base(target)
}

func prune(store string, logger *slog.Logger, keep ...string) {
	entries, err := os.ReadDir(store)
	if err != nil {
		logger.Warn("failed to list bundle versions", "path", store, "error", err)
		return
	}

	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	for _, e := range entries {
		if kept[e.Name()] {
			continue
		}
		path := filepath.Join(store, e.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove old bundle version", "path", path, "error", err)
		}
	}
}

func discardVersion(version, store string, logger *slog.Logger) {
	if err := os.RemoveAll(version); err != nil {
		logger.Warn("failed to remove unpublished bundle", "path", version, "error", err)
	}
	removeIfEmpty(store)
}

func removeIfEmpty(dir string) {
	// os.Remove refuses non-empty directories.
	_ = os.Remove(dir)
}
