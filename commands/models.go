package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mailcraft/config"
	"mailcraft/model"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models of the selected provider",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var setDefaultFlag string

func init() {
	modelsCmd.Flags().StringVar(&setDefaultFlag, "set-default", "", "Save this model (and the provider) as the default in config.toml")
}

func runModels(cmd *cobra.Command, args []string) error {
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

	if setDefaultFlag != "" {
		if err := config.SetDefaultModel(deps.Config.DataDir(), m.ProviderID, setDefaultFlag); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default model set to %s (%s)\n", setDefaultFlag, config.ProviderDisplayName(m.ProviderID))
		return nil
	}

	models, err := deps.ListModels(ctx, m.ProviderID, m.APIKey())
	if err != nil {
		return fmt.Errorf("failed to list %s models: %w", config.ProviderDisplayName(m.ProviderID), err)
	}
	if len(models) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No models found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tID\tNAME\tDESCRIPTION")
	for _, info := range models {
		marker := ""
		if info.ID == m.ModelID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, info.ID, info.Name, info.Description)
	}
	return w.Flush()
}
