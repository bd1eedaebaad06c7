package util

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/sidkik/nosync/pkg/cloud"
	"github.com/sidkik/nosync/pkg/config"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/nosync"
)

// SyncFlags are the flags shared by the disable and enable commands.
type SyncFlags struct {
	cwd         string
	ignoreFiles []string
	dryRun      bool
	verbose     bool
	roots       map[string]string
	targetRoots map[string]string
	linkInPlace bool
	createDirs  bool
	runInCI     bool

	flags *pflag.FlagSet
}

// Register adds the flags to `flags`. The create-dirs flag is only added if
// `withCreateDirs` is set, since restoring never needs to create directories.
func (f *SyncFlags) Register(flags *pflag.FlagSet, withCreateDirs bool) {
	f.flags = flags
	flags.StringVar(&f.cwd, "cwd", "",
		"The directory that relative paths are resolved against. "+
			"Defaults to the current directory.")
	flags.StringSliceVar(&f.ignoreFiles, "ignore-file", nil,
		"The name of an ignore file, such as .gitignore, to keep in sync "+
			"with the excluded paths. May be repeated.")
	flags.BoolVar(&f.dryRun, "dry-run", false,
		"Print what would happen without changing any files.")
	flags.BoolVar(&f.verbose, "verbose", false,
		"Print every change, including ignore file updates and removed directories.")
	flags.StringToStringVar(&f.roots, "root", nil,
		"Override the synced directory of a provider, e.g. dropbox=/data/Dropbox.")
	flags.StringToStringVar(&f.targetRoots, "target-root", nil,
		"Override where a provider's excluded files are moved to, "+
			"e.g. dropbox=/data/Linked.")
	flags.BoolVar(&f.linkInPlace, "link-in-place", true,
		"Rename excluded paths with a suffix ignored by the provider, rather "+
			"than moving them out of the synced directory. Only iCloud Drive supports this.")
	if withCreateDirs {
		flags.BoolVar(&f.createDirs, "create-dirs", true,
			"Create the parent directories of paths that don't exist yet.")
	}
	flags.BoolVar(&f.runInCI, "ci", false,
		"Run even if a continuous integration environment is detected.")
}

// Options merges the flags with the user's config. Flags that were set
// explicitly take precedence.
func (f *SyncFlags) Options(cfg config.User) (nosync.Options, error) {
	opts := nosync.Options{
		Cwd:               f.cwd,
		IgnoreFiles:       cfg.IgnoreFiles,
		DryRun:            f.dryRun,
		Verbose:           f.verbose,
		LinkInPlace:       f.linkInPlace,
		CreateMissingDirs: f.createDirs,
		RunInCI:           f.runInCI || cfg.RunInCI,
	}

	if f.changed("ignore-file") {
		opts.IgnoreFiles = f.ignoreFiles
	}

	if !f.changed("link-in-place") && cfg.LinkInPlace != nil {
		opts.LinkInPlace = *cfg.LinkInPlace
	}

	var err error
	opts.Roots, err = mergeRoots(cfg.Roots, f.roots)
	if err != nil {
		return nosync.Options{}, errors.WithContext(err, "root")
	}

	opts.TargetRoots, err = mergeRoots(cfg.TargetRoots, f.targetRoots)
	if err != nil {
		return nosync.Options{}, errors.WithContext(err, "target root")
	}
	return opts, nil
}

func (f *SyncFlags) changed(name string) bool {
	return f.flags != nil && f.flags.Changed(name)
}

func mergeRoots(fromConfig, fromFlags map[string]string) (map[events.ProviderKey]string, error) {
	for key := range fromFlags {
		if _, ok := cloud.Lookup(events.ProviderKey(key)); !ok {
			return nil, errors.NewFriendlyError("Unknown cloud provider %q.", key)
		}
	}

	merged := map[string]string{}
	for key, path := range fromConfig {
		merged[key] = path
	}
	for key, path := range fromFlags {
		merged[key] = path
	}
	return config.ProviderRoots(merged), nil
}

// ParsePaths splits the comma separated paths given on the command line.
func ParsePaths(args []string) (paths []string) {
	for _, arg := range args {
		for _, path := range strings.Split(arg, ",") {
			if path = strings.TrimSpace(path); path != "" {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
