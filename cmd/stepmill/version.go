package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stepmill/stepmill"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stepmill",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stepmill version %s\n", stepmill.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
