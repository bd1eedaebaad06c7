package util

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/nosync/pkg/config"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/nosync"
)

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exp  []string
	}{
		{name: "None"},
		{name: "Single", args: []string{"node_modules"}, exp: []string{"node_modules"}},
		{
			name: "CSV",
			args: []string{"node_modules,dist, coverage"},
			exp:  []string{"node_modules", "dist", "coverage"},
		},
		{name: "EmptyEntries", args: []string{",a,,b,"}, exp: []string{"a", "b"}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, ParsePaths(test.args))
		})
	}
}

func TestSyncFlagsOptions(t *testing.T) {
	linkInPlace := false
	userConfig := config.User{
		Roots:       map[string]string{"dropbox": "/config/Dropbox", "oneDrive": "/config/OneDrive"},
		IgnoreFiles: []string{".gitignore"},
		LinkInPlace: &linkInPlace,
	}

	tests := []struct {
		name     string
		args     []string
		cfg      config.User
		expOpts  nosync.Options
		expError error
	}{
		{
			name: "Defaults",
			expOpts: nosync.Options{
				LinkInPlace:       true,
				CreateMissingDirs: true,
			},
		},
		{
			name: "Flags",
			args: []string{
				"--cwd", "/work",
				"--ignore-file", ".gitignore",
				"--ignore-file", ".dockerignore",
				"--dry-run", "--verbose", "--ci",
				"--link-in-place=false", "--create-dirs=false",
				"--root", "dropbox=/data/Dropbox",
				"--target-root", "iCloudDrive=/data/Linked",
			},
			expOpts: nosync.Options{
				Cwd:         "/work",
				IgnoreFiles: []string{".gitignore", ".dockerignore"},
				DryRun:      true,
				Verbose:     true,
				RunInCI:     true,
				Roots:       map[events.ProviderKey]string{"dropbox": "/data/Dropbox"},
				TargetRoots: map[events.ProviderKey]string{"iCloudDrive": "/data/Linked"},
			},
		},
		{
			name: "Config",
			cfg:  userConfig,
			expOpts: nosync.Options{
				IgnoreFiles:       []string{".gitignore"},
				CreateMissingDirs: true,
				Roots: map[events.ProviderKey]string{
					"dropbox":  "/config/Dropbox",
					"oneDrive": "/config/OneDrive",
				},
			},
		},
		{
			name: "FlagsOverrideConfig",
			cfg:  userConfig,
			args: []string{
				"--ignore-file", ".npmignore",
				"--link-in-place",
				"--root", "dropbox=/flag/Dropbox",
			},
			expOpts: nosync.Options{
				IgnoreFiles:       []string{".npmignore"},
				LinkInPlace:       true,
				CreateMissingDirs: true,
				Roots: map[events.ProviderKey]string{
					"dropbox":  "/flag/Dropbox",
					"oneDrive": "/config/OneDrive",
				},
			},
		},
		{
			name:     "UnknownProvider",
			args:     []string{"--root", "box=/data/Box"},
			expError: errors.WithContext(errors.NewFriendlyError("Unknown cloud provider %q.", "box"), "root"),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var flags SyncFlags
			flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Register(flagSet, true)
			require.NoError(t, flagSet.Parse(test.args))

			opts, err := flags.Options(test.cfg)
			assert.Equal(t, test.expError, err)
			assert.Equal(t, test.expOpts, opts)
		})
	}
}

func TestEventPrinter(t *testing.T) {
	var out bytes.Buffer
	emitter := events.NewEmitter(EventPrinter(&out, false))
	emitter.Found("dropbox", []string{"dist"})
	emitter.Symlink("dropbox", "/linked/dist", "dist")
	emitter.MoveFail("dropbox", events.SourceMissing, "missing", "/linked/missing")
	emitter.AddEntry("dropbox", ".gitignore", []string{"dist"})
	emitter.NotFound([]string{"/tmp/a", "b"})
	assert.Equal(t, `[nosync] [dropbox] "dist" is linked to "/linked/dist".
[nosync] [dropbox] Skipped "missing" because it doesn't exist.
[nosync] Not synced by any cloud provider: "/tmp/a", "b"
`, out.String())

	out.Reset()
	emitter = events.NewEmitter(EventPrinter(&out, true))
	emitter.Found("iCloudDrive", []string{"dist"})
	emitter.Delete("iCloudDrive", "dist", events.DeletedSymlink)
	emitter.Move("iCloudDrive", "dist.nosync", "dist")
	emitter.Delete("iCloudDrive", "/linked/a", events.DeletedParent)
	emitter.DeleteEntry("iCloudDrive", ".gitignore", []string{"dist.nosync"})
	emitter.MoveFail("iCloudDrive", events.LinkTargetMissing, "/linked/b", "b")
	assert.Equal(t, `[nosync] [iCloudDrive] Found "dist"
[nosync] [iCloudDrive] Deleted symbolic link "dist".
[nosync] [iCloudDrive] "dist.nosync" is moved to "dist".
[nosync] [iCloudDrive] Deleted empty directory "/linked/a".
[nosync] [iCloudDrive] Removed "dist.nosync" from ".gitignore".
[nosync] [iCloudDrive] Skipped "b" because the file it links to, "/linked/b", doesn't exist.
`, out.String())
}
