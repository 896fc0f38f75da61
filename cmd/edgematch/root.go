package main

import (
	"github.com/spf13/cobra"

	"github.com/vancomm/edgematch-server/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "edgematch",
	Short: "Edge-matching tile puzzle server",
	Long: `Deal, play and solve 3x3 edge-matching puzzles.

Configuration comes from the environment, a .env file in the working
directory and the optional --config file, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (json, yaml, toml or env)")
}
