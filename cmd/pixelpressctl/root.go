package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// developer tooling for a running pixelpress server
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pixelpressctl",
		Short:         "PixelPress developer tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load() // .env is optional
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}
