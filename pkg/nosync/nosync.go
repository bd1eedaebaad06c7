// Package nosync excludes files from every supported cloud sync provider,
// and restores them.
package nosync

import (
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sidkik/nosync/pkg/ci"
	"github.com/sidkik/nosync/pkg/cloud"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
)

// Options configures Disable and Enable. The zero value is usable.
type Options struct {
	// Cwd is used to resolve relative paths. Defaults to the process's
	// working directory.
	Cwd string

	// IgnoreFiles are the names of ignore files, such as ".gitignore", that
	// are updated with the excluded paths.
	IgnoreFiles []string

	// DryRun reports what would happen without touching the filesystem.
	DryRun bool

	Events events.Handlers

	// Verbose reports every removed parent directory when restoring.
	Verbose bool

	// Roots and TargetRoots override the synced root and the relocation
	// root of each provider.
	Roots       map[events.ProviderKey]string
	TargetRoots map[events.ProviderKey]string

	// LinkInPlace renames excluded paths with a suffix for providers that
	// support it, rather than moving them to the target root.
	LinkInPlace bool

	// CreateMissingDirs creates the parent directories of excluded paths.
	CreateMissingDirs bool

	// RunInCI allows running under a CI service. Otherwise, Disable and
	// Enable don't do anything in CI.
	RunInCI bool
}

// Disable excludes `paths` from sync for every provider that syncs them.
func Disable(paths []string, opts Options) error {
	return run(paths, opts, (*cloud.Service).Exclude)
}

// Enable restores `paths` that were previously excluded with Disable.
func Enable(paths []string, opts Options) error {
	return run(paths, opts, (*cloud.Service).Restore)
}

type operation func(svc *cloud.Service, matched []string) error

type providerRun struct {
	svc     *cloud.Service
	matched []string
}

// Mocked for unit testing.
var isCI = ci.IsCI

func run(paths []string, opts Options, op operation) error {
	if !opts.RunInCI && isCI() {
		log.Debug("Running in CI. Not doing anything.")
		return nil
	}

	if opts.Cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.WithContext(err, "get working directory")
		}
		opts.Cwd = cwd
	}

	emitter := events.NewEmitter(opts.Events)

	// Build every service before touching the filesystem so that
	// configuration errors abort the whole run. Found events are emitted in
	// the order that providers are declared.
	var runs []providerRun
	unmatched := paths
	for _, desc := range cloud.Descriptors {
		svc, err := cloud.New(desc, cloud.Options{
			Cwd:         opts.Cwd,
			Root:        opts.Roots[desc.Key],
			TargetRoot:  opts.TargetRoots[desc.Key],
			LinkInPlace: opts.LinkInPlace,
			IgnoreFiles: opts.IgnoreFiles,
			CreateDirs:  opts.CreateMissingDirs,
			DryRun:      opts.DryRun,
			Verbose:     opts.Verbose,
			Events:      emitter,
		})
		if err != nil {
			return errors.WithContext(err, string(desc.Key))
		}

		matched := svc.Match(paths)
		unmatched = difference(unmatched, matched)
		if len(matched) == 0 {
			continue
		}

		log.WithFields(log.Fields{
			"provider": desc.Key,
			"root":     svc.Root(),
			"paths":    matched,
		}).Debug("Found synced paths")
		emitter.Found(desc.Key, matched)
		runs = append(runs, providerRun{svc, matched})
	}

	var group errgroup.Group
	for _, r := range runs {
		r := r
		group.Go(func() error {
			if err := op(r.svc, r.matched); err != nil {
				return errors.WithContext(err, string(r.svc.Key()))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if len(unmatched) != 0 {
		emitter.NotFound(unmatched)
	}
	return nil
}

// difference returns the elements of `a` that aren't in `b`, in their
// original order.
func difference(a, b []string) (diff []string) {
	exclude := map[string]struct{}{}
	for _, s := range b {
		exclude[s] = struct{}{}
	}

	for _, s := range a {
		if _, ok := exclude[s]; !ok {
			diff = append(diff, s)
		}
	}
	return diff
}
