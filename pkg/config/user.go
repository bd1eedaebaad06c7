package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/nosync/pkg/cloud"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
)

const (
	// UserConfigPath is the default path to the nosync user config.
	UserConfigPath = "~/.nosync.yaml"

	// InitialUserConfigVersion is the first version of the nosync user
	// config. Config files that do not specify a version will default to
	// this version.
	InitialUserConfigVersion = "v1alpha1"

	// SupportedUserConfigVersion is the supported version of the nosync
	// user config of the current binary.
	SupportedUserConfigVersion = "v1alpha1"
)

// User contains the user's defaults for the disable and enable commands.
// Command line flags take precedence over it.
type User struct {
	Version string `json:"version,omitempty"`

	// Roots and TargetRoots are keyed by provider, e.g. "dropbox".
	Roots       map[string]string `json:"roots,omitempty"`
	TargetRoots map[string]string `json:"targetRoots,omitempty"`

	IgnoreFiles []string `json:"ignoreFiles,omitempty"`

	// LinkInPlace is a pointer so that an unset value can be told apart from
	// an explicit false.
	LinkInPlace *bool `json:"linkInPlace,omitempty"`
	RunInCI     bool  `json:"runInCI,omitempty"`
}

func (u User) getVersion() string {
	return u.Version
}

// Mocked for unit testing.
var (
	homedirExpand = homedir.Expand
	expandHome    = homedir.Expand
)

// ParseUser attempts to parse the User stored in the default path.
func ParseUser() (User, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return User{}, errors.WithContext(err, "expand config path")
	}

	config := User{Version: InitialUserConfigVersion}
	if err := parseConfig(path, &config, SupportedUserConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return User{}, errors.NewFriendlyError("The nosync user config "+
				"file doesn't exist at %q. Please run `nosync config` to "+
				"create it.", path)
		}
		return User{}, errors.WithContext(err, "parse")
	}

	if err := config.validate(path); err != nil {
		return User{}, err
	}

	dir := filepath.Dir(path)
	if config.Roots, err = expandPaths(config.Roots, dir); err != nil {
		return User{}, errors.WithContext(err, "expand roots")
	}
	if config.TargetRoots, err = expandPaths(config.TargetRoots, dir); err != nil {
		return User{}, errors.WithContext(err, "expand target roots")
	}
	return config, nil
}

// LoadUser is like ParseUser, except that a missing config file isn't an
// error. Instead, an empty config is returned.
func LoadUser() (User, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return User{}, errors.WithContext(err, "expand config path")
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return User{}, errors.WithContext(err, "stat config")
	}
	if !exists {
		return User{Version: SupportedUserConfigVersion}, nil
	}
	return ParseUser()
}

func (u User) validate(path string) error {
	for _, roots := range []map[string]string{u.Roots, u.TargetRoots} {
		for key := range roots {
			if _, ok := cloud.Lookup(events.ProviderKey(key)); !ok {
				return errors.NewFriendlyError("Unknown cloud provider %q in %q.\n"+
					"Supported providers are: %s.", key, path, supportedProviders())
			}
		}
	}
	return nil
}

func supportedProviders() string {
	var keys []string
	for _, desc := range cloud.Descriptors {
		keys = append(keys, string(desc.Key))
	}
	return strings.Join(keys, ", ")
}

// expandPaths expands `~` in each path, and evaluates relative paths
// relative to `dir`.
func expandPaths(paths map[string]string, dir string) (map[string]string, error) {
	if len(paths) == 0 {
		return paths, nil
	}

	expanded := map[string]string{}
	for key, path := range paths {
		path, err := expandHome(path)
		if err != nil {
			return nil, errors.WithContext(err, key)
		}

		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		expanded[key] = path
	}
	return expanded, nil
}

// ProviderRoots converts `paths`, which is keyed by provider name, into the
// form accepted by the nosync package.
func ProviderRoots(paths map[string]string) map[events.ProviderKey]string {
	if len(paths) == 0 {
		return nil
	}

	converted := map[events.ProviderKey]string{}
	for key, path := range paths {
		converted[events.ProviderKey(key)] = path
	}
	return converted
}

// SortedKeys returns the keys of `paths` in alphabetical order.
func SortedKeys(paths map[string]string) []string {
	var keys []string
	for key := range paths {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteUser writes the given user config to disk.
func WriteUser(cfg User) error {
	cfg.Version = SupportedUserConfigVersion
	path, err := GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetUserConfigPath returns the path to the user's global nosync
// configuration. This path is expanded, so it can be directly passed to file
// operations.
func GetUserConfigPath() (string, error) {
	return homedirExpand(UserConfigPath)
}
