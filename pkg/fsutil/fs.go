// Package fsutil implements the filesystem operations used to exclude and
// restore files. Every mutating operation honors dry runs and reports what
// it did through an events.Emitter.
package fsutil

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/paths"
)

// fs is the filesystem that all operations run against. Tests may replace it,
// but symbolic link operations require an afero.Symlinker such as OsFs.
var fs afero.Fs = afero.NewOsFs()

func symlinker() (afero.Symlinker, error) {
	sfs, ok := fs.(afero.Symlinker)
	if !ok {
		return nil, errors.New("filesystem does not support symbolic links")
	}
	return sfs, nil
}

// StatNoFollow returns information about `path` without following symbolic
// links. It returns a nil FileInfo and no error if the path doesn't exist.
func StatNoFollow(path string) (os.FileInfo, error) {
	var fi os.FileInfo
	var err error
	if lstater, ok := fs.(afero.Lstater); ok {
		fi, _, err = lstater.LstatIfPossible(path)
	} else {
		fi, err = fs.Stat(path)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return fi, nil
}

// IsSymlink returns whether `fi` describes a symbolic link.
func IsSymlink(fi os.FileInfo) bool {
	return fi != nil && fi.Mode()&os.ModeSymlink != 0
}

// ReadLinkTarget returns the path that the link at `path` points to. If
// `absolute` is set, relative link targets are resolved against the link's
// directory.
//
// It fails with errors.FileNotFound if `path` doesn't exist, errors.NotALink
// if it isn't a symbolic link, and errors.LinkTargetMissing if the target
// doesn't exist.
func ReadLinkTarget(path string, absolute bool) (string, error) {
	fi, err := StatNoFollow(path)
	if err != nil {
		return "", errors.WithContext(err, "lstat")
	}
	if fi == nil {
		return "", errors.FileNotFound{Path: path}
	}
	if !IsSymlink(fi) {
		return "", errors.NotALink{Path: path}
	}

	sfs, err := symlinker()
	if err != nil {
		return "", err
	}

	target, err := sfs.ReadlinkIfPossible(path)
	if err != nil {
		return "", errors.WithContext(err, "readlink")
	}

	absTarget := target
	if !filepath.IsAbs(target) {
		absTarget = filepath.Join(filepath.Dir(path), target)
	}

	targetInfo, err := StatNoFollow(absTarget)
	if err != nil {
		return "", errors.WithContext(err, "lstat target")
	}
	if targetInfo == nil {
		return "", errors.LinkTargetMissing{Path: path, Target: absTarget}
	}

	if absolute {
		return absTarget, nil
	}
	return target, nil
}

// FS performs mutating filesystem operations on behalf of a provider.
type FS struct {
	// Cwd is used to shorten the paths reported in events.
	Cwd string

	// Dry disables all changes to disk. Events are still emitted.
	Dry bool

	Provider events.ProviderKey
	Events   *events.Emitter
}

// Move moves `from` to `to`, creating any missing parent directories of `to`.
func (f *FS) Move(from, to string) error {
	if !f.Dry {
		if err := fs.MkdirAll(filepath.Dir(to), 0755); err != nil {
			return errors.WithContext(err, "make parent directories")
		}

		if err := fs.Rename(from, to); err != nil {
			return errors.WithContext(err, "rename")
		}
	}

	f.Events.Move(f.Provider,
		paths.RelativeIfContained(from, f.Cwd),
		paths.RelativeIfContained(to, f.Cwd))
	return nil
}

// Symlink creates a symbolic link at `path` that points to `target`.
func (f *FS) Symlink(target, path string) error {
	if !f.Dry {
		sfs, err := symlinker()
		if err != nil {
			return err
		}

		if err := sfs.SymlinkIfPossible(target, path); err != nil {
			return errors.WithContext(err, "symlink")
		}
	}

	f.Events.Symlink(f.Provider, target, paths.RelativeIfContained(path, f.Cwd))
	return nil
}

// RemoveLink deletes the symbolic link at `absolutePath`. `displayPath` is the
// path reported in the delete event, usually the path as the user wrote it.
func (f *FS) RemoveLink(absolutePath, displayPath string) error {
	if !f.Dry {
		if err := fs.Remove(absolutePath); err != nil {
			return errors.WithContext(err, "remove link")
		}
	}

	f.Events.Delete(f.Provider, displayPath, events.DeletedSymlink)
	return nil
}

// MkdirParents creates the missing ancestor directories of `path`.
func (f *FS) MkdirParents(path string) error {
	if f.Dry {
		return nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "make parent directories")
	}
	return nil
}

// RemoveEmptyParents deletes the directories above `start` that are empty
// once `start` is gone, stopping at the first non-empty directory or when it
// reaches `stop`. `stop` itself is never deleted, and nothing outside of it
// is touched. The removed directories are returned most specific first.
//
// In a dry run nothing is deleted. Instead, `start` and every directory that
// would be removed are treated as if they were already gone.
func RemoveEmptyParents(start, stop string, dry bool) ([]string, error) {
	var removed []string
	gone := filepath.Clean(start)
	for dir := filepath.Dir(gone); paths.Contains(stop, dir); dir = filepath.Dir(dir) {
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			// Another restore may have already pruned this directory.
			if os.IsNotExist(err) {
				return removed, nil
			}
			return removed, errors.WithContext(err, "read dir")
		}

		for _, entry := range entries {
			if filepath.Join(dir, entry.Name()) != gone {
				return removed, nil
			}
		}

		if !dry {
			if err := fs.Remove(dir); err != nil {
				return removed, errors.WithContext(err, "remove dir")
			}
		}

		log.WithField("path", dir).Debug("Removed empty directory")
		removed = append(removed, dir)
		gone = dir
	}
	return removed, nil
}
