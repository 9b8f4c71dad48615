package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mailcraft/config"
	"mailcraft/preview"
)

var addrFlag string

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Serve an HTML file in the browser preview",
	Long: `Preview serves an HTML file on the live preview page and pushes the new
content to open browsers whenever the file changes. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&addrFlag, "addr", "a", "", "Listen address (defaults to [preview] addr)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]
	html, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	addr := addrFlag
	if addr == "" {
		addr = config.DefaultPreviewAddr
		if deps, err := loadDependencies(); err == nil {
			if deps.Config.Preview.Addr != "" {
				addr = deps.Config.Preview.Addr
			}
			deps.Close()
		}
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	hub := preview.NewHub()
	hub.Publish(string(html))
	srv := preview.NewServer(addr, hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		url, err := srv.URL(gctx)
		if err != nil {
			// Run reports the bind failure.
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Previewing %s at %s\n", path, url)
		return preview.WatchFile(gctx, path, hub, nil)
	})
	return g.Wait()
}
