package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "📋 Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atlas %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
