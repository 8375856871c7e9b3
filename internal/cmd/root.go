package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/auth"
	"github.com/atlasprime/atlas/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "⚡ Atlas - Terminal client for Atlas Prime",
	Long: `# ⚡ Atlas

**A terminal client for the Atlas Prime chat platform.**

## ✨ Features

- 💬 **Interactive chat TUI** with markdown-rendered replies
- 🤖 **Agent chats** backed by configurable tools
- 📊 **Live usage telemetry** while you chat
- 📎 **File and link ingestion** for chat context
- 🔐 **Token-based auth** stored locally

## 🚀 Getting Started

Run **atlas login** to sign in, then **atlas chat** to open the TUI.

Use **atlas chat --help** for detailed options.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Set custom help function to use glamour for markdown rendering
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd)
	})
}

// bootstrap loads config and credentials and builds the API client.
func bootstrap() (*config.Config, *auth.Store, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	creds := auth.NewStore(config.CredentialsPath())

	client := api.NewClient(cfg.BaseURL, creds)
	return cfg, creds, client, nil
}

// requireAuth is bootstrap plus a signed-in check.
func requireAuth() (*config.Config, *auth.Store, *api.Client, error) {
	cfg, creds, client, err := bootstrap()
	if err != nil {
		return nil, nil, nil, err
	}
	if !creds.Authenticated() {
		return nil, nil, nil, fmt.Errorf("not signed in, run 'atlas login' first")
	}
	return cfg, creds, client, nil
}

// renderMarkdownHelp renders command help using glamour for markdown display
func renderMarkdownHelp(cmd *cobra.Command) {
	var helpContent strings.Builder

	if cmd.Long != "" {
		helpContent.WriteString(cmd.Long)
		helpContent.WriteString("\n\n")
	} else if cmd.Short != "" {
		helpContent.WriteString("# " + cmd.Short)
		helpContent.WriteString("\n\n")
	}

	helpContent.WriteString("## 📖 Usage\n\n")
	helpContent.WriteString("```bash\n")
	helpContent.WriteString(cmd.UseLine())
	helpContent.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		helpContent.WriteString("## 🔧 Available Commands\n\n")
		for _, subCmd := range cmd.Commands() {
			if subCmd.IsAvailableCommand() {
				helpContent.WriteString(fmt.Sprintf("- **%s** - %s\n", subCmd.Name(), subCmd.Short))
			}
		}
		helpContent.WriteString("\n")
	}

	if cmd.HasAvailableFlags() {
		helpContent.WriteString("## ⚙️  Flags\n\n")
		flagUsages := cmd.Flags().FlagUsages()
		if flagUsages != "" {
			helpContent.WriteString("```\n")
			helpContent.WriteString(flagUsages)
			helpContent.WriteString("```\n\n")
		}
	}

	if cmd.HasParent() && cmd.InheritedFlags().HasFlags() {
		helpContent.WriteString("## 🌐 Global Flags\n\n")
		inheritedUsages := cmd.InheritedFlags().FlagUsages()
		if inheritedUsages != "" {
			helpContent.WriteString("```\n")
			helpContent.WriteString(inheritedUsages)
			helpContent.WriteString("```\n\n")
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		cmd.Help()
		return
	}

	rendered, err := renderer.Render(helpContent.String())
	if err != nil {
		cmd.Help()
		return
	}

	fmt.Print(rendered)
}
