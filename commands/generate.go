package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mailcraft/model"
	"mailcraft/storage"
)

var (
	editFlag   string
	outputFlag string
)

var generateCmd = &cobra.Command{
	Use:   "generate [instruction]",
	Short: "Generate a template without the interactive builder",
	Long: `Generate streams one template from the selected provider. The instruction
comes from the argument or, when absent, from stdin. With --edit the given
HTML file is sent along and the instruction is applied to it.

Progress goes to stderr; the cleaned HTML goes to stdout or to --output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&editFlag, "edit", "e", "", "HTML file to edit instead of starting from scratch")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the template to a file")
}

func readInstruction(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no instruction given: pass it as an argument or on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	instruction, err := readInstruction(cmd, args)
	if err != nil {
		return err
	}

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	// One-shot runs do not touch the saved sessions.
	m, err := newSessionModel(ctx, deps, model.Options{})
	if err != nil {
		return err
	}
	m.SessionStorage = nil

	if editFlag != "" {
		prior, err := os.ReadFile(editFlag)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", editFlag, err)
		}
		if strings.TrimSpace(string(prior)) == "" {
			return fmt.Errorf("%s is empty", editFlag)
		}
		m.Template = string(prior)
	}

	progress := cmd.ErrOrStderr()
	updates := 0
	err = m.Exchange(ctx, instruction, func(display string) {
		updates++
		fmt.Fprintf(progress, "\rGenerating with %s... %d updates, %d bytes", m.ProviderID, updates, len(display))
	})
	if updates > 0 {
		fmt.Fprintln(progress)
	}
	if err != nil {
		return err
	}

	if outputFlag != "" {
		if err := storage.ExportTemplate(outputFlag, m.Template); err != nil {
			return err
		}
		fmt.Fprintf(progress, "Template written to %s\n", outputFlag)
		return nil
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), m.Template)
	return err
}
