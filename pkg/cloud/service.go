package cloud

import (
	"path/filepath"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/fsutil"
	"github.com/sidkik/nosync/pkg/ignorefile"
	"github.com/sidkik/nosync/pkg/paths"
)

// Options configures a Service.
type Options struct {
	// Cwd is used to resolve relative paths. Required.
	Cwd string

	// Root overrides the provider's default root directory.
	Root string

	// TargetRoot overrides where excluded files are moved to.
	TargetRoot string

	// LinkInPlace renames excluded files with the provider's in-place suffix
	// instead of relocating them. Ignored by providers without a suffix.
	LinkInPlace bool

	// IgnoreFiles are the names of ignore files to keep in sync.
	IgnoreFiles []string

	// CreateDirs creates the missing parent directories of paths before
	// excluding them.
	CreateDirs bool

	// DryRun simulates all operations without changing anything on disk.
	DryRun bool

	// Verbose reports every removed parent directory, rather than just the
	// deepest one.
	Verbose bool

	Events *events.Emitter
}

// Service excludes and restores paths for a single provider.
type Service struct {
	key        events.ProviderKey
	root       string
	syncedDirs []string
	targetRoot string
	suffix     string

	cwd         string
	ignoreFiles []string
	createDirs  bool
	dry         bool
	verbose     bool
	events      *events.Emitter
	fs          *fsutil.FS

	// pruneLock serializes removing empty directories from the target root,
	// since restored paths often share parents.
	pruneLock sync.Mutex
}

// New creates a Service for the provider described by `desc`. It fails with
// errors.NoRootError if the provider's root can't be determined.
func New(desc Descriptor, opts Options) (*Service, error) {
	root, userRoot, err := resolveRoot(desc, opts)
	if err != nil {
		return nil, err
	}

	home, err := homeDir()
	if err != nil {
		log.WithError(err).Debug("Failed to get home directory")
	}

	syncedDirs := []string{root}
	if desc.ExtraSyncedDirs != nil && home != "" {
		syncedDirs = append(syncedDirs, desc.ExtraSyncedDirs(root, home)...)
	}

	targetRoot, err := resolveTargetRoot(root, userRoot, home, opts)
	if err != nil {
		return nil, errors.WithContext(err, "resolve target root")
	}

	var suffix string
	if opts.LinkInPlace {
		suffix = desc.InPlaceSuffix
	}

	return &Service{
		key:         desc.Key,
		root:        root,
		syncedDirs:  syncedDirs,
		targetRoot:  targetRoot,
		suffix:      suffix,
		cwd:         opts.Cwd,
		ignoreFiles: dedupe(opts.IgnoreFiles),
		createDirs:  opts.CreateDirs,
		dry:         opts.DryRun,
		verbose:     opts.Verbose,
		events:      opts.Events,
		fs: &fsutil.FS{
			Cwd:      opts.Cwd,
			Dry:      opts.DryRun,
			Provider: desc.Key,
			Events:   opts.Events,
		},
	}, nil
}

func resolveRoot(desc Descriptor, opts Options) (root string, userRoot bool, err error) {
	if opts.Root != "" {
		expanded, err := homedir.Expand(opts.Root)
		if err != nil {
			return "", false, errors.WithContext(err, "expand root")
		}
		return paths.Resolve(opts.Cwd, expanded), true, nil
	}

	if desc.DefaultRoot == nil {
		return "", false, errors.NoRootError{Provider: string(desc.Key)}
	}

	home, err := homeDir()
	if err != nil || home == "" {
		log.WithError(err).WithField("provider", desc.Key).Debug("Failed to get home directory")
		return "", false, errors.NoRootError{Provider: string(desc.Key)}
	}

	root = desc.DefaultRoot(home)
	if root == "" {
		return "", false, errors.NoRootError{Provider: string(desc.Key)}
	}
	return filepath.Clean(root), false, nil
}

// resolveTargetRoot returns the directory excluded files are moved to. By
// default it's a "<root name> Linked Files" directory next to a user supplied
// root, or in the home directory for default roots.
func resolveTargetRoot(root string, userRoot bool, home string, opts Options) (string, error) {
	if opts.TargetRoot != "" {
		expanded, err := homedir.Expand(opts.TargetRoot)
		if err != nil {
			return "", errors.WithContext(err, "expand")
		}
		return paths.Resolve(opts.Cwd, expanded), nil
	}

	name := filepath.Base(root) + " Linked Files"
	if userRoot || home == "" {
		return filepath.Join(filepath.Dir(root), name), nil
	}
	return filepath.Join(home, name), nil
}

func dedupe(strs []string) (deduped []string) {
	seen := map[string]struct{}{}
	for _, s := range strs {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		deduped = append(deduped, s)
	}
	return deduped
}

// Key returns the key of the service's provider.
func (s *Service) Key() events.ProviderKey {
	return s.key
}

// Root returns the provider's root directory.
func (s *Service) Root() string {
	return s.root
}

// SyncedDirs returns every directory synced by the provider, starting with
// the root.
func (s *Service) SyncedDirs() []string {
	return append([]string(nil), s.syncedDirs...)
}

// TargetRoot returns the directory that excluded files are moved to.
func (s *Service) TargetRoot() string {
	return s.targetRoot
}

func (s *Service) syncedDirOf(absPath string) (string, bool) {
	for _, dir := range s.syncedDirs {
		if paths.Contains(dir, absPath) {
			return dir, true
		}
	}
	return "", false
}

// Match returns the paths that are synced by the provider, in their
// original order.
func (s *Service) Match(toMatch []string) (matched []string) {
	for _, path := range toMatch {
		if _, ok := s.syncedDirOf(paths.Resolve(s.cwd, path)); ok {
			matched = append(matched, path)
		}
	}
	return matched
}

// linkTarget returns where the contents of `path` go when it's excluded.
func (s *Service) linkTarget(path string) string {
	absPath := paths.Resolve(s.cwd, path)
	if s.suffix != "" {
		return absPath + s.suffix
	}

	// Paths in extra synced directories are placed under the directory's
	// name, mirroring how they show up inside the root.
	dir, _ := s.syncedDirOf(absPath)
	rel, err := filepath.Rel(dir, absPath)
	if err != nil {
		rel = filepath.Base(absPath)
	}
	if dir != s.root {
		rel = filepath.Join(filepath.Base(dir), rel)
	}
	return filepath.Join(s.targetRoot, rel)
}

// NotSync excludes the given paths that belong to the provider.
func (s *Service) NotSync(toExclude []string) error {
	matched := s.Match(toExclude)
	if len(matched) == 0 {
		return nil
	}

	s.events.Found(s.key, matched)
	return s.Exclude(matched)
}

// Resync restores the given paths that belong to the provider.
func (s *Service) Resync(toRestore []string) error {
	matched := s.Match(toRestore)
	if len(matched) == 0 {
		return nil
	}

	s.events.Found(s.key, matched)
	return s.Restore(matched)
}

// Exclude moves each of `matched` to its link target and replaces it with a
// symbolic link. `matched` must already be filtered with Match.
//
// Paths that are missing or already linked are reported through MoveFail
// events. If a path and its link target both exist and the path isn't a
// link, Exclude fails with errors.AmbiguousStateError.
func (s *Service) Exclude(matched []string) error {
	linked := make([]string, len(matched))
	var group errgroup.Group
	for i, path := range matched {
		i, path := i, path
		group.Go(func() error {
			target, err := s.moveAndLink(path, s.linkTarget(path))
			if err != nil {
				return err
			}
			linked[i] = target
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return s.updateIgnoreFiles(ignorefile.Add, nonEmpty(linked))
}

// moveAndLink returns the absolute path of the link target if `from` was
// moved and linked, and an empty string if it was skipped.
func (s *Service) moveAndLink(from, to string) (string, error) {
	lp := paths.ResolveLinkPaths(from, to, s.cwd)
	if s.createDirs {
		if err := s.fs.MkdirParents(lp.From); err != nil {
			return "", errors.WithContext(err, "create parent directories")
		}
	}

	fromInfo, err := fsutil.StatNoFollow(lp.From)
	if err != nil {
		return "", errors.WithContext(err, "stat source")
	}

	toInfo, err := fsutil.StatNoFollow(lp.To)
	if err != nil {
		return "", errors.WithContext(err, "stat link target")
	}

	displayTo := paths.RelativeIfContained(lp.To, s.cwd)
	switch {
	case fromInfo != nil && toInfo != nil && !fsutil.IsSymlink(fromInfo):
		return "", errors.AmbiguousStateError{Path: from, Target: lp.To}
	case fromInfo == nil:
		s.events.MoveFail(s.key, events.SourceMissing, from, displayTo)
		return "", nil
	case toInfo != nil:
		s.events.MoveFail(s.key, events.LinkAlreadyExists, from, displayTo)
		return "", nil
	case fsutil.IsSymlink(fromInfo):
		log.WithFields(log.Fields{
			"provider": s.key,
			"path":     from,
		}).Debug("Path is already a symbolic link. Skipping.")
		return "", nil
	}

	if err := s.fs.Move(lp.From, lp.To); err != nil {
		return "", errors.WithContext(err, "move")
	}

	if err := s.fs.Symlink(lp.Link, lp.From); err != nil {
		return "", errors.WithContext(err, "link")
	}
	return lp.To, nil
}

// Restore undoes Exclude for each of `matched`: the link is removed, the
// contents are moved back, and directories left empty in the target root are
// removed. `matched` must already be filtered with Match.
//
// Paths that aren't links, or whose link target is missing, are reported
// through MoveFail events and skipped.
func (s *Service) Restore(matched []string) error {
	restored := make([]string, len(matched))
	var group errgroup.Group
	for i, path := range matched {
		i, path := i, path
		group.Go(func() error {
			target, err := s.moveToOriginal(path)
			if err != nil {
				return err
			}
			restored[i] = target
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return s.updateIgnoreFiles(ignorefile.Delete, nonEmpty(restored))
}

// moveToOriginal returns the absolute path of the former link target if
// `path` was restored, and an empty string if it was skipped.
func (s *Service) moveToOriginal(path string) (string, error) {
	absPath := paths.Resolve(s.cwd, path)
	target, err := fsutil.ReadLinkTarget(absPath, true)
	if err != nil {
		switch cause := errors.RootCause(err).(type) {
		case errors.NotALink:
			s.events.MoveFail(s.key, events.NotALink, "", path)
		case errors.FileNotFound:
			s.events.MoveFail(s.key, events.NotFound, "", path)
		case errors.LinkTargetMissing:
			s.events.MoveFail(s.key, events.LinkTargetMissing, cause.Target, path)
		default:
			return "", errors.WithContext(err, "read link")
		}
		return "", nil
	}

	if err := s.fs.RemoveLink(absPath, path); err != nil {
		return "", errors.WithContext(err, "remove link")
	}

	if err := s.fs.Move(target, absPath); err != nil {
		return "", errors.WithContext(err, "move")
	}

	s.pruneLock.Lock()
	removed, err := fsutil.RemoveEmptyParents(target, s.targetRoot, s.dry)
	s.pruneLock.Unlock()
	if err != nil {
		return "", errors.WithContext(err, "remove empty parents")
	}

	if len(removed) > 0 {
		toReport := removed[:1]
		if s.verbose {
			toReport = removed
		}
		for _, dir := range toReport {
			s.events.Delete(s.key, paths.RelativeIfContained(dir, s.cwd), events.DeletedParent)
		}
	}
	return target, nil
}

type ignoreUpdateFn func(name string, toIgnore []string, opts ignorefile.Options) error

func (s *Service) updateIgnoreFiles(update ignoreUpdateFn, targets []string) error {
	if len(targets) == 0 {
		return nil
	}

	opts := ignorefile.Options{
		Cwd:      s.cwd,
		Dry:      s.dry,
		Provider: s.key,
		Events:   s.events,
	}

	var group errgroup.Group
	for _, name := range s.ignoreFiles {
		name := name
		group.Go(func() error {
			if err := update(name, targets, opts); err != nil {
				return errors.WithContext(err, "update "+name)
			}
			return nil
		})
	}
	return group.Wait()
}

func nonEmpty(strs []string) (filtered []string) {
	for _, s := range strs {
		if s != "" {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
