package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/postdesk"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr  string
		dev   bool
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		Long: `Serve the published posts. With --dev the authoring pages under /admin/
and the JSON API under /api/ are enabled as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if dev {
				cfg.Mode = postdesk.ModeDevelopment
			}
			if cmd.Flags().Changed("watch") {
				cfg.WatchContent = watch
			}
			if opts.source != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", opts.source)
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	cmd.Flags().BoolVar(&dev, "dev", false, "enable the authoring UI and API")
	cmd.Flags().BoolVar(&watch, "watch", false, "reindex when content files are added or removed")
	return cmd
}

func serve(ctx context.Context, cfg postdesk.SiteConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := postdesk.New(cfg, postdesk.ViewFuncs{})
	defer app.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.Echo.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
