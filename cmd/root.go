package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "honeycomb",
	Short: "Honeycomb grid with tap ripples",
	Long: "Honeycomb lays out a hexagonal grid and ripples a scale pulse outward from every tapped cell.\n" +
		"Serve it to browsers, draw it in a terminal, or print its layout.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (yaml or toml); HONEYCOMB_* env vars override it")
}
