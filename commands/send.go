package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mailcraft/mailer"
)

var (
	toFlag      string
	subjectFlag string
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send an HTML file as a test email",
	Long: `Send delivers an HTML file through Postmark when MAILCRAFT_POSTMARK_SERVER_TOKEN
is set, and otherwise writes it to the outbox directory for inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&toFlag, "to", "t", "", "Recipient (defaults to [mailer] recipient)")
	sendCmd.Flags().StringVarP(&subjectFlag, "subject", "s", "", "Subject (defaults to the file name)")
}

func runSend(cmd *cobra.Command, args []string) error {
	html, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	to := toFlag
	if to == "" {
		to = deps.Config.Mailer.Recipient
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	params := mailer.NewTestParams(to, name, string(html))
	if subjectFlag != "" {
		params.Subject = subjectFlag
	}
	if err := params.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := deps.Mailer.SendEmail(ctx, params); err != nil {
		return err
	}

	if dev, ok := deps.Mailer.(*mailer.DevSender); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote test email for %s to %s\n", params.SendTo, dev.Dir())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent test email to %s\n", params.SendTo)
	return nil
}
