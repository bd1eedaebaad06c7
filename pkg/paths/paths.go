// Package paths contains the pure path calculations used when excluding
// files from sync. None of the functions touch the filesystem.
package paths

import (
	"path/filepath"
	"strings"
)

// Resolve returns `path` as an absolute path, interpreting relative paths
// relative to `cwd`.
func Resolve(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	abs, err := filepath.Abs(filepath.Join(cwd, path))
	if err != nil {
		return filepath.Join(cwd, path)
	}
	return abs
}

// Contains returns whether `child` is strictly inside `parent`. A path does
// not contain itself.
func Contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) &&
		!filepath.IsAbs(rel)
}

// containsOrEqual is Contains, but also true when both paths are the same.
func containsOrEqual(parent, child string) bool {
	return filepath.Clean(parent) == filepath.Clean(child) || Contains(parent, child)
}

// RelativeEntry returns the path of `toPath` relative to the directory that
// contains `fromFile`. filepath.Rel on two files would be off by one level,
// so the directories are compared and the base name appended.
func RelativeEntry(fromFile, toPath string) string {
	relDir, err := filepath.Rel(filepath.Dir(fromFile), filepath.Dir(toPath))
	if err != nil {
		return toPath
	}
	return filepath.Join(relDir, filepath.Base(toPath))
}

// RelativeIfContained returns `path` relative to `cwd` if `cwd` contains it,
// and `path` unchanged otherwise.
func RelativeIfContained(path, cwd string) string {
	if !Contains(cwd, path) {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	return rel
}

// LinkPaths describes a symbolic link that's about to be created.
type LinkPaths struct {
	// From is the absolute path where the link will live.
	From string

	// To is the absolute path the link points to.
	To string

	// Link is the text stored in the link. It's relative when both paths are
	// inside the working directory so that the project can be moved without
	// breaking its links.
	Link string
}

// ResolveLinkPaths resolves `from` and `to` against `cwd`, and decides how
// the link from `from` to `to` should be written.
func ResolveLinkPaths(from, to, cwd string) LinkPaths {
	lp := LinkPaths{
		From: Resolve(cwd, from),
		To:   Resolve(cwd, to),
	}

	absCwd := Resolve(cwd, ".")
	if cwd != "" && containsOrEqual(absCwd, lp.From) && containsOrEqual(absCwd, lp.To) {
		lp.Link = RelativeEntry(lp.From, lp.To)
	} else {
		lp.Link = lp.To
	}
	return lp
}
