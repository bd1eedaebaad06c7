package cloud

import (
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/fsutil"
)

// Keys of the supported providers.
const (
	ICloudDrive events.ProviderKey = "iCloudDrive"
	Dropbox     events.ProviderKey = "dropbox"
	OneDrive    events.ProviderKey = "oneDrive"
)

// Descriptor describes how to find the directories synced by a provider.
type Descriptor struct {
	Key events.ProviderKey

	// DefaultRoot returns the provider's root directory when the user
	// doesn't supply one. It returns an empty string if there is no
	// conventional location.
	DefaultRoot func(home string) string

	// ExtraSyncedDirs returns directories outside of the root that the
	// provider also syncs. May be nil.
	ExtraSyncedDirs func(root, home string) []string

	// InPlaceSuffix is appended to excluded paths when linking in place
	// rather than relocating to the target root. Providers that don't
	// support it leave it empty.
	InPlaceSuffix string
}

// Descriptors lists the supported providers. Operations on multiple
// providers happen in this order whenever order is observable.
var Descriptors = []Descriptor{
	{
		Key:             ICloudDrive,
		DefaultRoot:     iCloudDriveRoot,
		ExtraSyncedDirs: iCloudDriveExtraDirs,
		InPlaceSuffix:   ".nosync",
	},
	{
		Key: Dropbox,
		DefaultRoot: func(home string) string {
			return filepath.Join(home, "Dropbox")
		},
	},
	{
		Key: OneDrive,
		DefaultRoot: func(home string) string {
			return filepath.Join(home, "OneDrive")
		},
	},
}

// Lookup returns the descriptor for `key`.
func Lookup(key events.ProviderKey) (Descriptor, bool) {
	for _, desc := range Descriptors {
		if desc.Key == key {
			return desc, true
		}
	}
	return Descriptor{}, false
}

// Mocked for unit testing.
var (
	homeDir = homedir.Dir
	goos    = runtime.GOOS
)

func iCloudDriveRoot(home string) string {
	if goos == "darwin" {
		return filepath.Join(home, "Library", "Mobile Documents", "com~apple~CloudDocs")
	}
	return filepath.Join(home, "iCloudDrive")
}

// iCloudDriveExtraDirs returns the user's Desktop and Documents folders if
// the "Desktop & Documents Folders" option is enabled. When it is, the
// Documents directory in the iCloud Drive root is a symbolic link.
func iCloudDriveExtraDirs(root, home string) []string {
	fi, err := fsutil.StatNoFollow(filepath.Join(root, "Documents"))
	if err != nil {
		log.WithError(err).Debug("Failed to check whether iCloud Drive syncs Documents")
		return nil
	}

	if !fsutil.IsSymlink(fi) {
		return nil
	}
	return []string{filepath.Join(home, "Documents"), filepath.Join(home, "Desktop")}
}
