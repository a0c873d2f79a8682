package cmd

import (
	"context"

	"github.com/xaam-platform/envelope/internal/ui"
	"github.com/xaam-platform/envelope/internal/utils"
	"github.com/xaam-platform/envelope/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	sealTo     []string
	sealKeys   map[string]string
	sealSelf   bool
	sealDryRun bool
)

func init() {
	SealCmd.Flags().StringSliceVarP(&sealTo, "to", "t", nil, "recipient ids from the recipient book (repeatable)")
	SealCmd.Flags().StringToStringVarP(&sealKeys, "key", "k", nil, "ad-hoc recipient as id=<base64 public key> (repeatable)")
	SealCmd.Flags().BoolVar(&sealSelf, "self", false, "also seal for your default identity")
	SealCmd.Flags().BoolVar(&sealDryRun, "dry-run", false, "preview which files would be sealed without making changes")
}

func resetSealCommandState() {
	sealTo = nil
	sealKeys = map[string]string{}
	sealSelf = false
	sealDryRun = false
}

// SealCmd encrypts files for a set of recipients.
var SealCmd = &cobra.Command{
	Use:   "seal <files...>",
	Short: "Encrypt files for one or more recipients",
	Long: `Encrypts each file once under a fresh payload key and wraps that key
for every recipient. The result is written next to the file with a
.sealed extension. Any recipient can open it with their own private key.

Files may be paths, directories or glob patterns (including **).

Examples:
  envelope seal report.json --to judge-a --to judge-b
  envelope seal "deliverables/**/*.json" --to judge-a --self
  envelope seal notes.txt --key judge-c=3q2+7w...=`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting seal command")
		spinner, cleanup := startSpinner("Sealing files...", verbose)
		defer cleanup()

		opts := workflows.SealOptions{
			FilePatterns: args,
			Recipients:   sealTo,
			ExtraKeys:    sealKeys,
			IncludeSelf:  sealSelf,
			DryRun:       sealDryRun,
		}

		result, err := workflows.Seal(context.Background(), opts)
		if err != nil {
			return reportError(spinner, err)
		}
		if !result.DryRun {
			Logger.Debugf("Wrapped payload keys with %d workers", result.Workers)
		}
		Logger.Infof("Sealed %d files for %d recipients", len(result.SourceFiles), len(result.Recipients))

		recipients := ""
		for i, id := range result.Recipients {
			if i > 0 {
				recipients += ", "
			}
			recipients += ui.Highlight.Sprint(id)
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Warning.Sprint("[dry-run]") + " Would seal " + utils.FormatPaths(result.SourceFiles) +
				"for " + recipients + "\n" +
				ui.HintLine("No changes made. Run without "+ui.Flag.Sprint("--dry-run")+" to seal")
			return nil
		}

		spinner.FinalMSG = ui.SuccessLine("Files sealed for "+recipients) + "\n" +
			"The following files were created: " + utils.FormatPaths(result.SealedFiles) +
			ui.HintLine("Only the listed recipients can open them")
		return nil
	},
}
