package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xaam-platform/envelope/internal/keystore"
	"github.com/xaam-platform/envelope/internal/ui"
	"github.com/xaam-platform/envelope/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	generateForce   bool
	generateDefault bool
	keysListJSON    bool
	keysShowRaw     bool
)

// KeysCmd groups the identity management commands.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage your local identities",
	Long: `Generates and lists the key pairs used to open envelopes.

Private keys are stored with 0600 permissions in the keys directory.
Share the public key with whoever seals files for you.`,
}

func init() {
	keysGenerateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "replace an existing key pair with the same id")
	keysGenerateCmd.Flags().BoolVar(&generateDefault, "default", false, "make this the default identity for opening")
	keysListCmd.Flags().BoolVar(&keysListJSON, "json", false, "output in JSON format")
	keysShowCmd.Flags().BoolVar(&keysShowRaw, "raw", false, "print only the base64 public key")

	KeysCmd.AddCommand(keysGenerateCmd)
	KeysCmd.AddCommand(keysListCmd)
	KeysCmd.AddCommand(keysShowCmd)
}

func resetKeysCommandState() {
	generateForce = false
	generateDefault = false
	keysListJSON = false
	keysShowRaw = false
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate [id]",
	Short: "Generate a new identity key pair",
	Long: `Generates a Curve25519 key pair and stores it in the keys directory.

If no id is given, one is derived from your username and hostname.
The first identity you generate becomes the default.

Examples:
  envelope keys generate
  envelope keys generate judge-a --default`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys generate command")
		spinner, cleanup := startSpinner("Generating key pair...", verbose)
		defer cleanup()

		opts := workflows.GenerateOptions{
			Force:      generateForce,
			SetDefault: generateDefault,
		}
		if len(args) == 1 {
			opts.ID = args[0]
		}

		result, err := workflows.GenerateIdentity(context.Background(), opts)
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Infof("Key pair for %s written to %s", result.ID, result.PrivateKeyPath)

		finalMessage := ui.SuccessLine("Identity "+ui.Highlight.Sprint(result.ID)+" generated") + "\n" +
			"Public key: " + result.PublicKey + "\n" +
			"Private key: " + ui.Path.Sprint(result.PrivateKeyPath)
		if result.IsDefault {
			finalMessage += "\n" + ui.HintLine("This is now your default identity")
		}
		finalMessage += "\n" + ui.HintLine("Share your public key with "+ui.Code.Sprint("envelope keys show --raw"))

		spinner.FinalMSG = finalMessage
		return nil
	},
}

type identityJSON struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
	Default   bool   `json:"default"`
	Secure    bool   `json:"secure"`
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys list command")

		identities, err := workflows.ListIdentities(context.Background())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to list identities: %v", err)
		}

		if keysListJSON {
			out := make([]identityJSON, len(identities))
			for i, id := range identities {
				out[i] = identityJSON{ID: id.ID, PublicKey: id.PublicKey, Default: id.Default, Secure: id.Secure}
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal identities to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(identities) == 0 {
			fmt.Println("No identities found.")
			fmt.Println(ui.HintLine("Run " + ui.Code.Sprint("envelope keys generate") + " to create one"))
			return nil
		}

		for _, id := range identities {
			marker := " "
			if id.Default {
				marker = ui.Success.Sprint("*")
			}
			line := fmt.Sprintf("%s %-24s %s", marker, id.ID, ui.Fingerprint(id.PublicKey))
			if id.PrivateKeyPath == "" {
				line += " " + ui.Warning.Sprint("public only")
			} else if !id.Secure {
				line += " " + ui.Warning.Sprint("insecure permissions")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the public key of an identity",
	Long: `Shows the public key of the given identity, or of the default identity.

Use --raw to print only the key, for example to pipe it to someone:
  envelope keys show --raw | pbcopy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys show command")

		id := ""
		if len(args) == 1 {
			id = args[0]
		}

		identity, err := workflows.ShowIdentity(context.Background(), id)
		if err != nil {
			fmt.Println(formatError(err))
			return fmt.Errorf("%w: %w", ErrReported, err)
		}

		if keysShowRaw {
			fmt.Println(identity.PublicKey)
			return nil
		}

		fmt.Printf("Identity:   %s\n", ui.Highlight.Sprint(identity.ID))
		fmt.Printf("Public key: %s\n", identity.PublicKey)
		if identity.PrivateKeyPath != "" {
			fmt.Printf("Private key: %s\n", ui.Path.Sprint(identity.PrivateKeyPath))
			if secure, perm, err := keystore.IsPrivateKeySecure(identity.PrivateKeyPath); err == nil {
				warnInsecureKey(secure, perm, identity.PrivateKeyPath)
			}
		}
		return nil
	},
}
