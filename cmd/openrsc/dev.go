package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-rsc/openrsc/internal/dev"
	"github.com/open-rsc/openrsc/pkg/directive"
)

func devCmd() *cobra.Command {
	var (
		root  string
		port  int
		host  string
		proxy string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch sources, retag and reload browsers",
		Long: `Start the development server.

Source changes re-run the tagger. Connected browsers reload after a
successful pass and show an error overlay after a failed one. With
--proxy, pages are proxied to the running application and the reload
script is injected into them.

Examples:
  openrsc dev
  openrsc dev --port=8080
  openrsc dev --proxy=http://localhost:8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if proxy != "" {
				cfg.Dev.Proxy = proxy
			}

			printBanner()
			fmt.Println("  dev")
			fmt.Println()

			server, err := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Logger: slog.Default(),
				OnTag: func(result *directive.ScanResult, err error) {
					if err != nil {
						errorMsg("Tagging failed")
						return
					}
					success("Tagged %d modules", len(result.Manifest.Registrations))
				},
				OnReload: func(clients int) {
					success("Reloaded %d browsers", clients)
				},
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case <-sigCh:
					fmt.Println("\n\n  Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			info("Listening on %s", cfg.DevURL())
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Project directory (default: nearest with a configuration)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from openrsc.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from openrsc.json)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "URL of the running application")
	return cmd
}
