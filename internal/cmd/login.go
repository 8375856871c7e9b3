package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atlasprime/atlas/internal/models"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "🔐 Sign in to Atlas Prime",
	Long: `# 🔐 Sign In

**Authenticate against the Atlas Prime backend and store the access token locally.**

The token is written to **~/.atlas/credentials.json** with owner-only permissions.

## 💡 Examples

` + "```bash\natlas login\natlas login --email you@example.com\n```",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, creds, client, err := bootstrap()
		if err != nil {
			return err
		}

		email := strings.TrimSpace(loginEmail)
		if email == "" {
			fmt.Print("Email: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read email: %w", err)
			}
			email = strings.TrimSpace(line)
		}
		if email == "" {
			return fmt.Errorf("email is required")
		}

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		resp, err := client.Login(ctx, email, string(password))
		if err != nil {
			return err
		}

		if resp.User != nil && resp.User.Email != "" {
			email = resp.User.Email
		}
		if err := creds.Set(models.Credentials{AccessToken: resp.AccessToken, Email: email}); err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}

		fmt.Printf("✅ Signed in as %s\n", email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email to sign in with (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}
