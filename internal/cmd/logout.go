package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasprime/atlas/internal/logger"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "🚪 Sign out and discard the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, creds, client, err := bootstrap()
		if err != nil {
			return err
		}
		if !creds.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		// Best effort; the local token is discarded either way
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := client.Logout(ctx); err != nil {
			logger.Debugf("server logout failed: %v", err)
		}

		creds.Clear()
		fmt.Println("✅ Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
