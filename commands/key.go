package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mailcraft/config"
	"mailcraft/model"
)

var skipVerifyFlag bool

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the provider API key",
	Long: `Store, show or remove the API key of the selected provider. Keys live in
the credential store configured under [security] in config.toml.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set <api key>",
	Short: "Verify and store an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key, masked",
	Args:  cobra.NoArgs,
	RunE:  runKeyShow,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

func init() {
	keySetCmd.Flags().BoolVar(&skipVerifyFlag, "skip-verify", false, "Store the key without pinging the provider")

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyClearCmd)
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func runKeySet(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	m, err := newSessionModel(ctx, deps, model.Options{})
	if err != nil {
		return err
	}
	if !model.RequiresCredential(m.ProviderID) {
		return fmt.Errorf("%s does not use an API key", config.ProviderDisplayName(m.ProviderID))
	}

	key := strings.TrimSpace(args[0])
	if key == "" {
		return &model.CredentialError{ProviderID: m.ProviderID}
	}

	if !skipVerifyFlag {
		fmt.Fprintf(cmd.ErrOrStderr(), "Checking key with %s...\n", config.ProviderDisplayName(m.ProviderID))
		if err := deps.Validate(ctx, m.ProviderID, key); err != nil {
			return fmt.Errorf("key was not stored: %w", err)
		}
	}

	if err := m.SetCredential(key); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key %s\n", config.ProviderDisplayName(m.ProviderID), maskKey(key))
	return nil
}

func runKeyShow(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	m, err := newSessionModel(cmd.Context(), deps, model.Options{})
	if err != nil {
		return err
	}

	name := config.ProviderDisplayName(m.ProviderID)
	switch {
	case !model.RequiresCredential(m.ProviderID):
		fmt.Fprintf(cmd.OutOrStdout(), "%s does not use an API key\n", name)
	case m.APIKey() == "":
		fmt.Fprintf(cmd.OutOrStdout(), "No %s API key stored\n", name)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", name, maskKey(m.APIKey()), m.Credentials.Method())
	}
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	m, err := newSessionModel(cmd.Context(), deps, model.Options{})
	if err != nil {
		return err
	}
	if err := m.SetCredential(""); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key\n", config.ProviderDisplayName(m.ProviderID))
	return nil
}
