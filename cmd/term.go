package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"honeycomb/terminal_view"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Draw the honeycomb in the terminal",
	Long: "Draw the honeycomb in the terminal. Click a cell to ripple it, 't' toggles the theme, 'q' quits.\n" +
		"With a redis relay the terminal shares taps with every other process on the same grid.",
	RunE: runTerm,
}

func init() {
	termCmd.Flags().String("log-file", "", "write logs here instead of discarding them")
	rootCmd.AddCommand(termCmd)
}

func runTerm(cmd *cobra.Command, args []string) error {
	cfg, vp, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal is the display, so logs go elsewhere.
	var out io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out, "", log.LstdFlags)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	h, closeHive, err := openHive(ctx, cfg, cfg.LayoutFootprint(), logger)
	if err != nil {
		return err
	}
	defer closeHive()
	watchTiming(vp, cfg, h, logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	view, err := terminal_view.New(screen, h, cfg.TerminalFootprint(), time.Duration(cfg.Server.PublishInterval), logger)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ignoreCanceled(h.Run(groupCtx))
	})
	group.Go(func() error {
		// Quitting the view ends the hive too.
		defer cancel()
		return view.Run(groupCtx)
	})
	return group.Wait()
}
