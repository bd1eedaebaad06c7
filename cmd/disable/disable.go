package disable

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/nosync/cmd/util"
	"github.com/sidkik/nosync/pkg/config"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/nosync"
)

// Mocked for unit testing.
var (
	stdout         io.Writer = os.Stdout
	loadUserConfig           = config.LoadUser
	disable                  = nosync.Disable
)

// New creates a new `disable` command.
func New() *cobra.Command {
	var flags util.SyncFlags
	cmd := &cobra.Command{
		Use:     "disable <paths>",
		Aliases: []string{"not-sync"},
		Short:   "Exclude files from cloud sync",
		Long: "Exclude files from cloud sync by moving them out of the synced " +
			"directory,\nand leaving a symbolic link in their place.\n\n" +
			"Paths are given as a comma separated list, e.g.\n" +
			"  nosync disable node_modules,dist,coverage",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args, &flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.Register(cmd.Flags(), true)
	return cmd
}

func run(args []string, flags *util.SyncFlags) error {
	paths := util.ParsePaths(args)
	if len(paths) == 0 {
		log.Debug("No paths to exclude")
		return nil
	}

	userConfig, err := loadUserConfig()
	if err != nil {
		return errors.WithContext(err, "read config")
	}

	opts, err := flags.Options(userConfig)
	if err != nil {
		return errors.WithContext(err, "parse flags")
	}
	opts.Events = util.EventPrinter(stdout, opts.Verbose)
	return disable(paths, opts)
}
