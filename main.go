package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/xaam-platform/envelope/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "envelope",
	Short: "envelope - seal files for a set of recipients",
	Long: `envelope encrypts a payload once and wraps its key for every recipient,
so each recipient can open it with their own private key.

Usage:
  envelope <command> [flags]

Available Commands:
  keys        Manage your local identities
  recipients  Manage the recipient book
  seal        Encrypt files for one or more recipients
  open        Decrypt sealed files with your private key
  inspect     Show the recipients of a sealed file
  log         View the audit log

Run 'envelope help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(c *cobra.Command, args []string) {
		fmt.Println()
		figure.NewColorFigure("envelope", "small", "green", true).Print()
		fmt.Println()
		fmt.Println("Run 'envelope --help' to see available commands.")
	},
}

func init() {
	cmd.AddCommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
