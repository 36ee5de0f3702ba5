package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"honeycomb/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the honeycomb to browsers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, vp, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	h, closeHive, err := openHive(ctx, cfg, cfg.LayoutFootprint(), logger)
	if err != nil {
		return err
	}
	defer closeHive()
	watchTiming(vp, cfg, h, logger)

	srv := server.NewServer(cfg.Addr(), h, time.Duration(cfg.Server.PublishInterval), logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ignoreCanceled(h.Run(groupCtx))
	})
	group.Go(func() error {
		return srv.Serve(groupCtx)
	})
	return group.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
