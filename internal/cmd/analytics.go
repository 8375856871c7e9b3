package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasprime/atlas/internal/models"
)

var (
	usagePeriodDays int
	usageChatID     string
)

var analyticsCmd = &cobra.Command{
	Use:   "usage",
	Short: "📊 Show your usage summary",
	Long: `# 📊 Usage

**Aggregate token and cost usage for your account over a period.**

## 💡 Examples

` + "```bash\natlas usage\natlas usage --days 7\natlas usage --chat <id>\n```",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if usageChatID != "" {
			snap, err := client.RealtimeUsage(ctx, usageChatID)
			if err != nil {
				return err
			}
			fmt.Printf("Chat:        %s\n", snap.ChatID)
			fmt.Printf("Last reply:  %d tokens\n", snap.LastMessageTokens)
			fmt.Printf("Chat total:  %d tokens  $%.4f\n", snap.TotalChatTokens, snap.TotalChatCost)
			fmt.Printf("Limit used:  %.1f%%\n", snap.PercentageUsed)
			if snap.WarningLevel != models.WarningNone {
				fmt.Printf("Warning:     %s\n", snap.WarningLevel)
			}
			return nil
		}

		report, err := client.UsageReport(ctx, usagePeriodDays)
		if err != nil {
			return err
		}

		fmt.Printf("Period:   %s to %s\n", report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))
		fmt.Printf("Tokens:   %d\n", report.TotalTokensUsed)
		fmt.Printf("Cost:     $%.4f\n", report.TotalCost)
		fmt.Printf("Chats:    %d\n", report.TotalChats)
		fmt.Printf("Messages: %d\n", report.TotalMessages)
		if report.FilesProcessed > 0 {
			fmt.Printf("Files:    %d\n", report.FilesProcessed)
		}
		if report.MostExpensiveRef.ChatID != "" {
			fmt.Printf("Most expensive chat: %s ($%.4f)\n", report.MostExpensiveRef.Title, report.MostExpensiveRef.Cost)
		}

		if len(report.DailyUsage) > 0 {
			fmt.Println("\nDaily:")
			for _, day := range report.DailyUsage {
				fmt.Printf("  %s  %8d tokens  $%.4f  %d msgs\n", day.Date, day.Tokens, day.Cost, day.Messages)
			}
		}
		return nil
	},
}

func init() {
	analyticsCmd.Flags().IntVar(&usagePeriodDays, "days", 30, "Period length in days")
	analyticsCmd.Flags().StringVar(&usageChatID, "chat", "", "Show the realtime snapshot for one chat instead")
	rootCmd.AddCommand(analyticsCmd)
}
