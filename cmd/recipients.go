package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xaam-platform/envelope/internal/ui"
	"github.com/xaam-platform/envelope/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	recipientsFromFile string
	recipientsListJSON bool
)

// RecipientsCmd manages the recipient book.
var RecipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage the recipient book",
	Long: `The recipient book maps ids to public keys so files can be sealed
with --to <id> instead of pasting keys each time.`,
}

func init() {
	recipientsAddCmd.Flags().StringVar(&recipientsFromFile, "from-file", "", "read the public key from a .pub file")
	recipientsListCmd.Flags().BoolVar(&recipientsListJSON, "json", false, "output in JSON format")

	RecipientsCmd.AddCommand(recipientsAddCmd)
	RecipientsCmd.AddCommand(recipientsListCmd)
	RecipientsCmd.AddCommand(recipientsRemoveCmd)
}

func resetRecipientsCommandState() {
	recipientsFromFile = ""
	recipientsListJSON = false
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add <id> [public-key]",
	Short: "Add or replace a recipient",
	Long: `Adds a recipient's base64 public key to the recipient book.

Examples:
  envelope recipients add judge-a 3q2+7w...=
  envelope recipients add judge-b --from-file judge-b.pub`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recipients add command")
		spinner, cleanup := startSpinner("Adding recipient...", verbose)
		defer cleanup()

		id := args[0]
		var publicKey string
		switch {
		case len(args) == 2:
			publicKey = args[1]
		case recipientsFromFile != "":
			data, err := os.ReadFile(recipientsFromFile)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read public key file: %v", err)
			}
			publicKey = strings.TrimSpace(string(data))
		default:
			spinner.FinalMSG = ui.ErrorLine("No public key given") + "\n" +
				ui.HintLine("Pass it as an argument or use "+ui.Flag.Sprint("--from-file"))
			return ErrReported
		}

		result, err := workflows.AddRecipient(context.Background(), id, publicKey)
		if err != nil {
			return reportError(spinner, err)
		}

		verb := "added"
		if result.Replaced {
			verb = "updated"
		}
		spinner.FinalMSG = ui.SuccessLine("Recipient "+ui.Highlight.Sprint(result.ID)+" "+verb) + " " + ui.Fingerprint(result.PublicKey)
		return nil
	},
}

type recipientJSON struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
}

var recipientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the recipient book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recipients list command")

		recipients, err := workflows.ListRecipients(context.Background())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to list recipients: %v", err)
		}

		if recipientsListJSON {
			out := make([]recipientJSON, len(recipients))
			for i, r := range recipients {
				out[i] = recipientJSON{ID: r.ID, PublicKey: r.PublicKey}
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal recipients to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(recipients) == 0 {
			fmt.Println("No recipients found.")
			return nil
		}
		for _, r := range recipients {
			fmt.Printf("%-24s %s\n", r.ID, ui.Fingerprint(r.PublicKey))
		}
		return nil
	},
}

var recipientsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recipients remove command")
		spinner, cleanup := startSpinner("Removing recipient...", verbose)
		defer cleanup()

		if err := workflows.RemoveRecipient(context.Background(), args[0]); err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = ui.SuccessLine("Recipient " + ui.Highlight.Sprint(args[0]) + " removed")
		return nil
	},
}
