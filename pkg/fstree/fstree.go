// Package fstree creates and loads directory trees. Tests use it to build
// fixtures on disk and to compare the filesystem before and after an
// operation.
package fstree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/sidkik/nosync/pkg/errors"
)

// symlinkFs is a filesystem that can create and read symbolic links.
type symlinkFs interface {
	afero.Fs
	afero.Symlinker
}

var fs symlinkFs = &afero.OsFs{}

// Kind is the type of a tree entry.
type Kind int

const (
	// FileKind is a regular file.
	FileKind Kind = iota

	// DirKind is a directory.
	DirKind

	// SymlinkKind is a symbolic link.
	SymlinkKind
)

// Entry is a single file, directory, or symbolic link in a Tree.
type Entry struct {
	Kind     Kind
	Contents string
	Target   string
}

// File returns a regular file entry.
func File(contents string) Entry {
	return Entry{Kind: FileKind, Contents: contents}
}

// Dir returns a directory entry.
func Dir() Entry {
	return Entry{Kind: DirKind}
}

// Symlink returns a symbolic link entry that points at `target`.
func Symlink(target string) Entry {
	return Entry{Kind: SymlinkKind, Target: target}
}

// Tree maps slash separated paths, relative to the root of the tree, to
// their entries.
type Tree map[string]Entry

// Create writes `tree` under `root`. Missing parent directories are created.
func Create(root string, tree Tree) error {
	var keys []string
	for path := range tree {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := tree[key]
		path := filepath.Join(root, filepath.FromSlash(key))
		if entry.Kind == DirKind {
			if err := fs.MkdirAll(path, 0755); err != nil {
				return errors.WithContext(err, "make dir")
			}
			continue
		}

		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.WithContext(err, "make parent")
		}

		switch entry.Kind {
		case FileKind:
			if err := afero.WriteFile(fs, path, []byte(entry.Contents), 0644); err != nil {
				return errors.WithContext(err, "write file")
			}
		case SymlinkKind:
			if err := fs.SymlinkIfPossible(entry.Target, path); err != nil {
				return errors.WithContext(err, "symlink")
			}
		}
	}
	return nil
}

// Load reads the tree under `root`. Symbolic links are not followed.
// Directories are only included if `includeDirs` is set.
func Load(root string, includeDirs bool) (Tree, error) {
	if _, _, err := fs.LstatIfPossible(root); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: root}
		}
		return nil, errors.WithContext(err, "stat root")
	}

	tree := Tree{}
	err := afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.WithContext(err, "relative path")
		}
		key := filepath.ToSlash(rel)

		switch {
		case fi.Mode()&os.ModeSymlink != 0:
			target, err := fs.ReadlinkIfPossible(path)
			if err != nil {
				return errors.WithContext(err, "readlink")
			}
			tree[key] = Symlink(target)
		case fi.IsDir():
			if includeDirs {
				tree[key] = Dir()
			}
		default:
			contents, err := afero.ReadFile(fs, path)
			if err != nil {
				return errors.WithContext(err, "read file")
			}
			tree[key] = File(string(contents))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Exists returns whether anything exists at `path`, without following
// symbolic links.
func Exists(path string) (bool, error) {
	_, _, err := fs.LstatIfPossible(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
