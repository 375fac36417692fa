package cmd

import (
	"fmt"

	"github.com/ivanzzeth/chainsim/core"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), core.Version)
	},
}
