package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/sidkik/nosync/cmd/config"
	"github.com/sidkik/nosync/cmd/disable"
	"github.com/sidkik/nosync/cmd/enable"
	"github.com/sidkik/nosync/cmd/util"
	"github.com/sidkik/nosync/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "NOSYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	if err := newRootCommand().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nosync",
		Short: "Exclude files from iCloud Drive, Dropbox and OneDrive sync",
		Long: "nosync moves files such as dependency caches and build output out of\n" +
			"cloud synced directories, and leaves symbolic links in their place.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		configCmd.New(),
		disable.New(),
		enable.New(),
		version.New(),
	)
	return rootCmd
}
