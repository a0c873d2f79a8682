package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xaam-platform/envelope/internal/ui"
	"github.com/xaam-platform/envelope/internal/workflows"

	"github.com/spf13/cobra"
)

var inspectJSON bool

func init() {
	InspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output in JSON format")
}

func resetInspectCommandState() {
	inspectJSON = false
}

type inspectOutput struct {
	Path        string   `json:"path"`
	Recipients  []string `json:"recipients"`
	PayloadSize int      `json:"payloadSize"`
	ForIdentity bool     `json:"forIdentity"`
}

// InspectCmd shows who a sealed file is for without decrypting it.
var InspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the recipients of a sealed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting inspect command")

		result, err := workflows.Inspect(context.Background(), args[0])
		if err != nil {
			fmt.Println(formatError(err))
			return fmt.Errorf("%w: %w", ErrReported, err)
		}

		if inspectJSON {
			data, err := json.MarshalIndent(inspectOutput{
				Path:        result.Path,
				Recipients:  result.Recipients,
				PayloadSize: result.PayloadSize,
				ForIdentity: result.ForIdentity,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal result to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("File:       %s\n", ui.Path.Sprint(result.Path))
		fmt.Printf("Payload:    %d bytes\n", result.PayloadSize)
		fmt.Printf("Recipients: %d\n", len(result.Recipients))
		for _, id := range result.Recipients {
			marker := " "
			if id == result.IdentityID {
				marker = ui.Success.Sprint("*")
			}
			fmt.Printf("  %s %s\n", marker, id)
		}
		if result.IdentityID != "" && !result.ForIdentity {
			fmt.Println(ui.HintLine("Your identity " + ui.Highlight.Sprint(result.IdentityID) + " cannot open this file"))
		}
		return nil
	},
}
