package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/xaam-platform/envelope/internal/keystore"
	"github.com/xaam-platform/envelope/internal/ui"
	"github.com/xaam-platform/envelope/internal/utils"
	"github.com/xaam-platform/envelope/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	openAs              string
	openPrivateKeyStdin bool
	openStdout          bool
	openJSON            bool
	openDryRun          bool
)

func init() {
	OpenCmd.Flags().StringVar(&openAs, "as", "", "recipient id to open as (defaults to your default identity)")
	OpenCmd.Flags().BoolVar(&openPrivateKeyStdin, "private-key-stdin", false, "read the private key from stdin")
	OpenCmd.Flags().BoolVar(&openStdout, "stdout", false, "write plaintext to stdout instead of files")
	OpenCmd.Flags().BoolVar(&openJSON, "json", false, "fail unless the plaintext is a JSON document")
	OpenCmd.Flags().BoolVar(&openDryRun, "dry-run", false, "preview which files would be opened without making changes")
}

func resetOpenCommandState() {
	openAs = ""
	openPrivateKeyStdin = false
	openStdout = false
	openJSON = false
	openDryRun = false
}

// OpenCmd decrypts sealed files.
var OpenCmd = &cobra.Command{
	Use:   "open <files...>",
	Short: "Decrypt sealed files with your private key",
	Long: `Unwraps your copy of the payload key and decrypts each .sealed file.
Plaintext is written next to the sealed file with the extension removed.

Every file is checked before anything is written, so a failure leaves
no partial output.

Examples:
  envelope open report.json.sealed
  envelope open "out/**/*.sealed" --as judge-a
  cat judge-a.key | envelope open report.json.sealed --as judge-a --private-key-stdin --stdout`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting open command")

		opts := workflows.OpenOptions{
			FilePatterns: args,
			RecipientID:  openAs,
			ToStdout:     openStdout,
			RequireJSON:  openJSON,
			DryRun:       openDryRun,
		}

		if openPrivateKeyStdin {
			Logger.Debugf("Reading private key from stdin")
			keyData, err := utils.ReadStdin()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read private key from stdin: %v", err)
			}
			defer clear(keyData)
			opts.PrivateKeyData = keyData
		}

		// The spinner would interleave with plaintext on stdout.
		quiet := openStdout && !openDryRun
		spinner, cleanup := startSpinner("Opening files...", verbose || quiet)
		defer cleanup()

		result, err := workflows.Open(context.Background(), opts)
		if err != nil {
			if quiet {
				fmt.Fprintln(os.Stderr, formatError(err))
				return fmt.Errorf("%w: %w", ErrReported, err)
			}
			return reportError(spinner, err)
		}

		if result.PrivateKeyPath != "" {
			if secure, perm, err := keystore.IsPrivateKeySecure(result.PrivateKeyPath); err == nil && !secure {
				if !quiet {
					spinner.Stop()
				}
				warnInsecureKey(secure, perm, result.PrivateKeyPath)
				if !quiet && !verbose && !debug {
					spinner.Start()
				}
			}
		}

		sources := make([]string, len(result.Files))
		targets := make([]string, 0, len(result.Files))
		for i, f := range result.Files {
			sources[i] = f.Source
			if f.Path != "" {
				targets = append(targets, f.Path)
			}
		}

		if result.DryRun {
			finalMessage := ui.Warning.Sprint("[dry-run]") + " Would open " + utils.FormatPaths(sources) +
				"as " + ui.Highlight.Sprint(result.RecipientID)
			if len(result.ExistingFiles) > 0 {
				finalMessage += "\n" + ui.Warning.Sprint("These files would be overwritten: ") + utils.FormatPaths(result.ExistingFiles)
			}
			spinner.FinalMSG = finalMessage
			return nil
		}

		if openStdout {
			if utils.IsStdoutTerminal() {
				Logger.WarnfAlways("Writing plaintext to a terminal; pipe or redirect stdout to keep it off screen")
			}
			for _, f := range result.Files {
				if _, err := os.Stdout.Write(f.Plaintext); err != nil {
					return fmt.Errorf("failed to write plaintext: %w", err)
				}
				clear(f.Plaintext)
			}
			return nil
		}

		spinner.FinalMSG = ui.SuccessLine("Files opened as "+ui.Highlight.Sprint(result.RecipientID)) + "\n" +
			"The following files were created: " + utils.FormatPaths(targets) +
			ui.HintLine("Do not commit the opened plaintext files")
		return nil
	},
}
