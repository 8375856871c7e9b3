package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "🛡️  Administrative reports (admin accounts only)",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List platform users",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		users, err := client.AdminUsers(ctx)
		if err != nil {
			return err
		}

		for _, user := range users {
			line := fmt.Sprintf("%s  %s", user.ID, user.Email)
			if user.Role != "" {
				line += "  (" + user.Role + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show platform-wide statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		stats, err := client.AdminStatistics(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Users:    %d (%d active)\n", stats.TotalUsers, stats.ActiveUsers)
		fmt.Printf("Chats:    %d\n", stats.TotalChats)
		fmt.Printf("Messages: %d\n", stats.TotalMessages)
		fmt.Printf("Tokens:   %d\n", stats.TotalTokens)
		fmt.Printf("Cost:     $%.2f\n", stats.TotalCost)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminStatsCmd)
	rootCmd.AddCommand(adminCmd)
}
