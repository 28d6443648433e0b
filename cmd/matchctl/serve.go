package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fenrir/internal/engine"
	"fenrir/internal/logging"
	fenrirnet "fenrir/internal/net"

	"github.com/spf13/cobra"
)

// newServeCmd builds the TCP driver: construct the engine and the
// server, then run until SIGINT/SIGTERM.
func newServeCmd(verbose *bool) *cobra.Command {
	var address string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching engine as a long-lived TCP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(address, port, *verbose)
		},
	}
	cmd.Flags().StringVar(&address, "address", "0.0.0.0", "listen address")
	cmd.Flags().IntVar(&port, "port", 9001, "listen port")
	return cmd
}

func serve(address string, port int, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log := logging.Nop()
	if verbose {
		log = logging.New(os.Stderr, true)
	}

	eng := engine.New(log)
	srv := fenrirnet.New(address, port, eng, log)
	return srv.Run(ctx)
}
