// Package cmd defines the battbench command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "battbench",
	Short: "Battery dispatch benchmark",
	Long: "battbench optimizes the dispatch of a battery storage asset against " +
		"historical market prices and reports the realized value.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
