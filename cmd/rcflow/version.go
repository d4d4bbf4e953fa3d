package main

import (
	"fmt"

	"github.com/aretw0/rcflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rcflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rcflow version %s\n", rcflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
