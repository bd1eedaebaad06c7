package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/nosync/cmd/util"
	"github.com/sidkik/nosync/pkg/cloud"
	"github.com/sidkik/nosync/pkg/config"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
)

const defaultIgnoreFile = ".gitignore"

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	stdin           io.Reader = os.Stdin
	parseUserConfig           = config.ParseUser
	loadUserConfig            = config.LoadUser
	writeUserConfig           = config.WriteUser
)

type cliOptions struct {
	ignoreFiles []string
	roots       map[string]string
	targetRoots map[string]string
	linkInPlace bool
	runInCI     bool
}

// New creates a new `config` command.
func New() *cobra.Command {
	var opts cliOptions
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the nosync user configuration",
		Long: "Setup the defaults used by `nosync disable` and `nosync enable`.\n" +
			"Settings that aren't given as flags keep their current value, " +
			"except for\nthe ignore files, which are prompted for.",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := setupConfig(opts, cmd.Flags().Changed); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s",
					errors.GetPrintableMessage(err))
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringSliceVar(&opts.ignoreFiles, "ignore-file", nil,
		"Set the ignore files to keep in sync. "+
			"Optional: If not set, `nosync config` will interactively prompt.")
	cmd.Flags().StringToStringVar(&opts.roots, "root", nil,
		"Set the synced directory of a provider, e.g. dropbox=/data/Dropbox.")
	cmd.Flags().StringToStringVar(&opts.targetRoots, "target-root", nil,
		"Set where a provider's excluded files are moved to, e.g. dropbox=/data/Linked.")
	cmd.Flags().BoolVar(&opts.linkInPlace, "link-in-place", true,
		"Set whether to rename excluded files in place for providers that support it.")
	cmd.Flags().BoolVar(&opts.runInCI, "ci", false,
		"Set whether to run in continuous integration environments.")

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.User) []string
	}

	getters := []getterSpec{
		{
			use:   "get-ignore-files",
			short: "Get the configured ignore files",
			fn:    func(cfg config.User) []string { return cfg.IgnoreFiles },
		},
		{
			use:   "get-roots",
			short: "Get the configured provider roots",
			fn:    func(cfg config.User) []string { return formatRoots(cfg.Roots) },
		},
		{
			use:   "get-target-roots",
			short: "Get the configured provider target roots",
			fn:    func(cfg config.User) []string { return formatRoots(cfg.TargetRoots) },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseUserConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
					return
				}

				for _, line := range getter.fn(cfg) {
					fmt.Fprintln(stdout, line)
				}
			},
		})
	}

	return cmd
}

func formatRoots(roots map[string]string) (lines []string) {
	for _, key := range config.SortedKeys(roots) {
		lines = append(lines, fmt.Sprintf("%s=%s", key, roots[key]))
	}
	return lines
}

// setupConfig merges the options given on the command line into the current
// user config, and writes the result. `changed` reports whether a flag was
// explicitly set.
func setupConfig(opts cliOptions, changed func(string) bool) error {
	cfg, err := generateConfig(opts, changed)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeUserConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func generateConfig(opts cliOptions, changed func(string) bool) (config.User, error) {
	cfg, err := loadUserConfig()
	if err != nil {
		log.WithError(err).Debug("Failed to read current config")
		cfg = config.User{}
	}

	if changed("root") {
		if cfg.Roots, err = mergeRoots(cfg.Roots, opts.roots); err != nil {
			return config.User{}, err
		}
	}

	if changed("target-root") {
		if cfg.TargetRoots, err = mergeRoots(cfg.TargetRoots, opts.targetRoots); err != nil {
			return config.User{}, err
		}
	}

	if changed("link-in-place") {
		linkInPlace := opts.linkInPlace
		cfg.LinkInPlace = &linkInPlace
	}

	if changed("ci") {
		cfg.RunInCI = opts.runInCI
	}

	if changed("ignore-file") {
		cfg.IgnoreFiles = opts.ignoreFiles
	} else {
		cfg.IgnoreFiles, err = promptIgnoreFiles(cfg.IgnoreFiles)
		if err != nil {
			return config.User{}, errors.WithContext(err, "read response")
		}
	}

	for _, name := range cfg.IgnoreFiles {
		if msg, ok := ignoreFileValidationFn(name); !ok {
			return config.User{}, errors.NewFriendlyError("%s", msg)
		}
	}
	return cfg, nil
}

func mergeRoots(curr, updates map[string]string) (map[string]string, error) {
	merged := map[string]string{}
	for key, path := range curr {
		merged[key] = path
	}

	for key, path := range updates {
		if _, ok := cloud.Lookup(events.ProviderKey(key)); !ok {
			return nil, errors.NewFriendlyError("Unknown cloud provider %q.", key)
		}

		// An empty path resets the provider to its default.
		if path == "" {
			delete(merged, key)
		} else {
			merged[key] = path
		}
	}
	return merged, nil
}

func ignoreFileValidationFn(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Sprintf("%q is not a valid ignore file name. "+
			"Ignore files are given by name, such as .gitignore, and are "+
			"found by searching upwards from each excluded path.", name), false
	}
	return "", true
}

func promptIgnoreFiles(curr []string) ([]string, error) {
	stdinReader := bufio.NewReader(stdin)
	for {
		resp, err := promptUser(stdinReader,
			"Enter the ignore files that should list excluded files, separated by commas.\n"+
				"Excluded files are added to the nearest ignore file with each name.",
			"Ignore files", defaultIgnoreFile, strings.Join(curr, ","))
		if err != nil {
			return nil, err
		}

		names := util.ParsePaths([]string{resp})
		valid := true
		for _, name := range names {
			if msg, ok := ignoreFileValidationFn(name); !ok {
				fmt.Fprintln(stdout, msg)
				valid = false
				break
			}
		}

		if valid {
			return names, nil
		}
	}
}

func promptUser(stdinReader *bufio.Reader, helpString, prompt, defaultAnswer, currAnswer string) (string, error) {
	// Separate the prompt from whatever is printed next.
	defer fmt.Fprintln(stdout)

	options := []string{}
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	options = append(options, "(Enter manually)")

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	if nOptions := len(options); nOptions > 1 {
		fmt.Fprintln(stdout)
		for i, option := range options {
			if i == 0 {
				option = fmt.Sprintf("%s (recommended)", option)
			}
			fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
		}
		fmt.Fprintln(stdout)

		for {
			fmt.Fprintf(stdout, "Please choose one [1-%d]: ", nOptions)
			choiceStr, err := stdinReader.ReadString('\n')
			if err != nil {
				return "", err
			}

			var choice int
			choiceStr = strings.TrimSpace(choiceStr)

			// An empty response picks the recommended option.
			if choiceStr == "" {
				choice = 1
			} else {
				choice, err = strconv.Atoi(choiceStr)
				if err != nil || choice < 1 || choice > nOptions {
					continue
				}
			}

			if choice == nOptions {
				break
			}
			return options[choice-1], nil
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	resp, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
