package enable

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
	enable                   = nosync.Enable
)

// New creates a new `enable` command.
func New() *cobra.Command {
	var flags util.SyncFlags
	cmd := &cobra.Command{
		Use:     "enable <paths>",
		Aliases: []string{"resync"},
		Short:   "Restore files excluded with `nosync disable`",
		Long: "Restore files excluded with `nosync disable` by replacing their " +
			"symbolic links\nwith the original files.\n\n" +
			"Paths are given as a comma separated list, e.g.\n" +
			"  nosync enable node_modules,dist,coverage",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args, &flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.Register(cmd.Flags(), false)
	return cmd
}

func run(args []string, flags *util.SyncFlags) error {
	paths := util.ParsePaths(args)
	if len(paths) == 0 {
		log.Debug("No paths to restore")
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
	return enable(paths, opts)
}
