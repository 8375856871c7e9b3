package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "🔧 List the tools agents can use",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		tools, err := client.ListTools(ctx)
		if err != nil {
			return err
		}
		if len(tools) == 0 {
			fmt.Println("No tools available.")
			return nil
		}

		for _, tool := range tools {
			line := tool.Name
			if tool.Category != "" {
				line += " (" + tool.Category + ")"
			}
			if tool.Description != "" {
				line += " - " + tool.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
