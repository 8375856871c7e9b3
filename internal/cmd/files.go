package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "📎 Manage uploaded files and processed links",
	Long: `# 📎 Files

**Upload documents or ingest web pages so chats can use them as context.**

## 💡 Examples

` + "```bash\natlas files upload report.pdf\natlas files link https://example.com/article\natlas files list\n```",
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file for chat context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		info, err := client.UploadFile(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Uploaded %s (id %s, %d tokens)\n", info.Filename, info.ID, info.TokenCount)
		return nil
	},
}

var linkMaxContent int

var filesLinkCmd = &cobra.Command{
	Use:   "link <url>",
	Short: "Ingest a web page as chat context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		info, err := client.ProcessLink(ctx, args[0], linkMaxContent)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Processed %s (id %s, %d tokens)\n", info.Filename, info.ID, info.TokenCount)
		return nil
	},
}

var (
	filesLimit int
	filesSkip  int
)

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		files, err := client.ListFiles(ctx, filesLimit, filesSkip)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No files yet.")
			return nil
		}

		for _, info := range files {
			line := fmt.Sprintf("%s  %s", info.ID, info.Filename)
			if info.TokenCount > 0 {
				line += fmt.Sprintf("  (%d tokens)", info.TokenCount)
			}
			if info.SourceURL != "" {
				line += "  " + info.SourceURL
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	filesLinkCmd.Flags().IntVar(&linkMaxContent, "max-content", 50000, "Maximum characters to extract from the page")
	filesListCmd.Flags().IntVar(&filesLimit, "limit", 50, "Maximum files to list")
	filesListCmd.Flags().IntVar(&filesSkip, "skip", 0, "Files to skip (pagination)")

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesLinkCmd)
	filesCmd.AddCommand(filesListCmd)
	rootCmd.AddCommand(filesCmd)
}
