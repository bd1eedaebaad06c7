// Package ignorefile keeps line-oriented ignore files (such as .gitignore) in
// sync with the paths that have been excluded from cloud sync.
//
// Each path is recorded in the nearest ignore file found in its directory or
// any ancestor, relative to that ignore file's directory. Paths without an
// ignore file above them are skipped.
package ignorefile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/fsutil"
	"github.com/sidkik/nosync/pkg/paths"
)

// fs is overridden by afero.NewMemMapFs() in the tests.
var fs = afero.NewOsFs()

// Options configures how ignore files are updated.
type Options struct {
	// Cwd resolves relative paths, and shortens the ignore file paths
	// reported in events.
	Cwd string

	// Dry disables writes. Events are still emitted.
	Dry bool

	Provider events.ProviderKey
	Events   *events.Emitter
}

// FindUp returns the path of the nearest file called `name` in `dir` or one
// of its ancestors. It returns an empty string if there is none.
func FindUp(name, dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, name)
		fi, err := fs.Stat(candidate)
		switch {
		case err == nil && !fi.IsDir():
			return candidate, nil
		case err != nil && !os.IsNotExist(err):
			return "", errors.WithContext(err, "stat")
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Entries maps each ignore file called `name` to the entries that should be
// recorded in it for `toIgnore`. Entries keep the order of `toIgnore`, and
// are written with forward slashes.
func Entries(name string, toIgnore []string, cwd string) (map[string][]string, error) {
	absPaths := make([]string, 0, len(toIgnore))
	var dirs []string
	seenDirs := map[string]struct{}{}
	for _, path := range toIgnore {
		abs := paths.Resolve(cwd, path)
		absPaths = append(absPaths, abs)

		dir := filepath.Dir(abs)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	var lock sync.Mutex
	ignoreFileOf := map[string]string{}
	var group errgroup.Group
	for _, dir := range dirs {
		dir := dir
		group.Go(func() error {
			ignoreFile, err := FindUp(name, dir)
			if err != nil {
				return errors.WithContext(err, "find ignore file")
			}

			lock.Lock()
			ignoreFileOf[dir] = ignoreFile
			lock.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	entries := map[string][]string{}
	seenEntries := map[string]map[string]struct{}{}
	for _, abs := range absPaths {
		ignoreFile := ignoreFileOf[filepath.Dir(abs)]
		if ignoreFile == "" {
			log.WithFields(log.Fields{
				"name": name,
				"path": abs,
			}).Debug("No ignore file found. Skipping.")
			continue
		}

		entry := filepath.ToSlash(paths.RelativeEntry(ignoreFile, abs))
		if seenEntries[ignoreFile] == nil {
			seenEntries[ignoreFile] = map[string]struct{}{}
		}
		if _, ok := seenEntries[ignoreFile][entry]; ok {
			continue
		}
		seenEntries[ignoreFile][entry] = struct{}{}
		entries[ignoreFile] = append(entries[ignoreFile], entry)
	}
	return entries, nil
}

// Add records `toIgnore` in their nearest ignore files called `name`. Entries
// that are already present aren't added again.
func Add(name string, toIgnore []string, opts Options) error {
	return forEachIgnoreFile(name, toIgnore, opts, addEntries)
}

// Delete removes the entries for `toIgnore` from their nearest ignore files
// called `name`.
func Delete(name string, toIgnore []string, opts Options) error {
	return forEachIgnoreFile(name, toIgnore, opts, deleteEntries)
}

type updateFn func(ignoreFile string, entries []string, opts Options) error

func forEachIgnoreFile(name string, toIgnore []string, opts Options, update updateFn) error {
	allEntries, err := Entries(name, toIgnore, opts.Cwd)
	if err != nil {
		return err
	}

	// Sort so that the order in which files are scheduled doesn't depend on
	// map iteration.
	var ignoreFiles []string
	for ignoreFile := range allEntries {
		ignoreFiles = append(ignoreFiles, ignoreFile)
	}
	sort.Strings(ignoreFiles)

	var group errgroup.Group
	for _, ignoreFile := range ignoreFiles {
		ignoreFile := ignoreFile
		group.Go(func() error {
			if err := update(ignoreFile, allEntries[ignoreFile], opts); err != nil {
				return errors.WithContext(err, "update "+ignoreFile)
			}
			return nil
		})
	}
	return group.Wait()
}

func addEntries(ignoreFile string, entries []string, opts Options) error {
	lines, err := fsutil.ReadLines(fs, ignoreFile)
	if err != nil {
		return errors.WithContext(err, "read")
	}

	existing := map[string]struct{}{}
	for _, line := range lines.Lines {
		existing[line] = struct{}{}
	}

	var newEntries []string
	for _, entry := range entries {
		if _, ok := existing[entry]; !ok {
			newEntries = append(newEntries, entry)
		}
	}
	if len(newEntries) == 0 {
		return nil
	}

	if !opts.Dry {
		var toAppend string
		if last := lines.Lines[len(lines.Lines)-1]; last != "" {
			toAppend = lines.EOL
		}
		toAppend += strings.Join(newEntries, lines.EOL) + lines.EOL

		f, err := fs.OpenFile(ignoreFile, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return errors.WithContext(err, "open")
		}
		if _, err := f.WriteString(toAppend); err != nil {
			f.Close()
			return errors.WithContext(err, "append")
		}
		if err := f.Close(); err != nil {
			return errors.WithContext(err, "close")
		}
	}

	opts.Events.AddEntry(opts.Provider, displayPath(ignoreFile, opts.Cwd), entries)
	return nil
}

func deleteEntries(ignoreFile string, entries []string, opts Options) error {
	lines, err := fsutil.ReadLines(fs, ignoreFile)
	if err != nil {
		return errors.WithContext(err, "read")
	}

	toDelete := map[string]struct{}{}
	for _, entry := range entries {
		toDelete[entry] = struct{}{}
	}

	kept := make([]string, 0, len(lines.Lines))
	for _, line := range lines.Lines {
		if _, ok := toDelete[line]; !ok {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines.Lines) {
		return nil
	}

	if !opts.Dry {
		fi, err := fs.Stat(ignoreFile)
		if err != nil {
			return errors.WithContext(err, "stat")
		}

		updated := fsutil.Lines{Lines: kept, EOL: lines.EOL}
		if err := afero.WriteFile(fs, ignoreFile, []byte(updated.String()), fi.Mode().Perm()); err != nil {
			return errors.WithContext(err, "write")
		}
	}

	opts.Events.DeleteEntry(opts.Provider, displayPath(ignoreFile, opts.Cwd), entries)
	return nil
}

func displayPath(ignoreFile, cwd string) string {
	rel, err := filepath.Rel(cwd, ignoreFile)
	if err != nil {
		return ignoreFile
	}
	return rel
}
