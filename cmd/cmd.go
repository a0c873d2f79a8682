package cmd

import (
	logger "github.com/xaam-platform/envelope/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger
)

// AddCommands registers the global flags and every subcommand on root.
func AddCommands(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
	}

	root.AddCommand(KeysCmd)
	root.AddCommand(RecipientsCmd)
	root.AddCommand(SealCmd)
	root.AddCommand(OpenCmd)
	root.AddCommand(InspectCmd)
	root.AddCommand(LogCmd)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}
	resetKeysCommandState()
	resetRecipientsCommandState()
	resetSealCommandState()
	resetOpenCommandState()
	resetInspectCommandState()
	resetLogCommandState()

	for _, c := range []*cobra.Command{KeysCmd, RecipientsCmd, SealCmd, OpenCmd, InspectCmd, LogCmd} {
		resetCobraFlagState(c)
	}
}

// resetCobraFlagState clears the Changed state of every flag under c.
func resetCobraFlagState(c *cobra.Command) {
	c.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
