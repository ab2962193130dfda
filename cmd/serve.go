package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/starcalypse/torrentdeck/config"
	"github.com/starcalypse/torrentdeck/server"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan and execute operations over a JSON HTTP API",
	Long: `Start an HTTP server exposing connection tests, scans, execution,
tracker listing and config management as JSON endpoints. Every request dials
its own downloader session.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides server.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if listenAddr != "" {
		addr = listenAddr
	}
	if addr == "" {
		addr = config.DefaultListen
	}

	srv := server.New(addr, operations, store, logger)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
