package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/riskbox"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of riskbox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "riskbox version %s\n", riskbox.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
