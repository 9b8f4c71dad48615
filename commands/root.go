// Package commands provides the mailcraft command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mailcraft/config"
	"mailcraft/model"
	"mailcraft/preview"
	"mailcraft/ui"
)

var (
	providerFlag string
	modelFlag    string

	// Version is set at build time.
	Version = "v0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "mailcraft",
	Short: "Build HTML email templates by talking to an LLM",
	Long: `mailcraft streams HTML email templates from an LLM provider while you
describe them. Each instruction either creates a new template or edits the
current one, and the result is shown live in the terminal and, optionally,
in a browser preview.

Examples:
  mailcraft                                   Start the interactive builder
  mailcraft generate "A welcome email"        Print a template to stdout
  mailcraft generate --edit a.html "Make it dark" -o b.html
  mailcraft key set <api key>                 Store the provider API key
  mailcraft send welcome.html --to me@example.com`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "",
		"Provider to use (gemini, openai, anthropic, openrouter, ollama)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (provider default when empty)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runTUI starts the interactive builder, with the preview server alongside
// when enabled. Whichever stops first takes the other down.
func runTUI(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	var (
		hub        *preview.Hub
		previewURL string
	)
	if deps.Config.Preview.Enabled {
		hub = preview.NewHub()
		srv := preview.NewServer(deps.Config.Preview.Addr, hub)
		g.Go(func() error {
			if err := srv.Run(runCtx); err != nil {
				// The TUI still works without the browser.
				config.DebugLog.Warnw("preview server stopped", "err", err)
			}
			return nil
		})

		urlCtx, urlCancel := context.WithTimeout(runCtx, 3*time.Second)
		previewURL, err = srv.URL(urlCtx)
		urlCancel()
		if err != nil {
			previewURL = ""
			hub = nil
		}
	}

	opts := model.Options{LastSession: deps.Sessions.LoadCurrent()}
	if hub != nil {
		opts.Preview = hub
	}
	m, err := newSessionModel(runCtx, deps, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui.NewAppView(m, previewURL), tea.WithAltScreen(), tea.WithContext(runCtx))

	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && runCtx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error running mailcraft: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if saveErr := m.SaveSessionNow(); saveErr != nil {
		config.DebugLog.Warnw("failed to save session on exit", "err", saveErr)
	}
	return err
}
