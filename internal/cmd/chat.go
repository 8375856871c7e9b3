package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlasprime/atlas/internal/config"
	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "💬 Open the interactive chat TUI",
	Long: `# 💬 Chat

**Open the interactive terminal UI for your Atlas Prime chats.**

## ⌨️  Keys

- **↑/↓** move, **enter** open a chat
- **n** new chat, **a** new agent chat
- **r** rename, **d** delete, **tab** switch filter
- **esc** back to the list, **ctrl+c** quit

While a chat is open the usage bar updates live every few seconds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, creds, client, err := requireAuth()
		if err != nil {
			return err
		}

		// The terminal belongs to the TUI; logs go to a file instead
		if err := logger.ConfigureFile(config.LogPath(), logger.GetLogLevelFromEnv()); err != nil {
			fmt.Printf("Warning: file logging disabled: %v\n", err)
		}
		defer logger.Close()

		app := tui.NewApp(client, creds, cfg, Version)
		return app.Run()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
