package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/KaramelBytes/depdash-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset()
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		s, err := server.New(d, log, server.Options{
			Addr:            addr,
			ReadTimeout:     time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout:    time.Duration(cfg.WriteTimeoutSec) * time.Second,
			ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSec) * time.Second,
			TableLimit:      cfg.TableLimit,
			Render:          dashboard.DefaultOptions(),
		})
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d records) on http://%s\n", d.Name(), d.Len(), addr)
		return s.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}
