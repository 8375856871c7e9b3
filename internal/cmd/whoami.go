package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "👤 Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		user, err := client.Me(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Email: %s\n", user.Email)
		if user.Username != "" {
			fmt.Printf("User:  %s\n", user.Username)
		}
		if user.Role != "" {
			fmt.Printf("Role:  %s\n", user.Role)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
