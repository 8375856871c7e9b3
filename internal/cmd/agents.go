package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasprime/atlas/internal/api"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "🤖 Manage chat agents",
	Long: `# 🤖 Agents

**Agents are named assistant profiles with their own prompt and tool set.**

## 💡 Examples

` + "```bash\natlas agents list\natlas agents create --name Researcher --prompt \"You research things.\" --tool web_search\natlas agents delete <id>\n```",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		agents, err := client.ListAgents(ctx)
		if err != nil {
			return err
		}
		if len(agents) == 0 {
			fmt.Println("No agents yet.")
			return nil
		}

		for _, agent := range agents {
			line := fmt.Sprintf("%s  %s", agent.ID, agent.Name)
			if len(agent.Tools) > 0 {
				line += "  [" + strings.Join(agent.Tools, ", ") + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one agent in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		agent, err := client.GetAgent(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:    %s\n", agent.ID)
		fmt.Printf("Name:  %s\n", agent.Name)
		if len(agent.Tools) > 0 {
			fmt.Printf("Tools: %s\n", strings.Join(agent.Tools, ", "))
		}
		if agent.Instructions != "" {
			fmt.Printf("Instructions:\n%s\n", agent.Instructions)
		}
		return nil
	},
}

var (
	agentName         string
	agentInstructions string
	agentTools        []string
)

var agentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}
		if strings.TrimSpace(agentName) == "" {
			return fmt.Errorf("--name is required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		agent, err := client.CreateAgent(ctx, api.AgentRequest{
			Name:         agentName,
			Instructions: agentInstructions,
			Tools:        agentTools,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✅ Created agent %s (%s)\n", agent.Name, agent.ID)
		return nil
	},
}

var agentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an existing agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		current, err := client.GetAgent(ctx, args[0])
		if err != nil {
			return err
		}

		req := api.AgentRequest{
			Name:         current.Name,
			Instructions: current.Instructions,
			Tools:        current.Tools,
		}
		if cmd.Flags().Changed("name") {
			req.Name = agentName
		}
		if cmd.Flags().Changed("prompt") {
			req.Instructions = agentInstructions
		}
		if cmd.Flags().Changed("tool") {
			req.Tools = agentTools
		}

		agent, err := client.UpdateAgent(ctx, args[0], req)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Updated agent %s (%s)\n", agent.Name, agent.ID)
		return nil
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := requireAuth()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if err := client.DeleteAgent(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("✅ Agent deleted.")
		return nil
	},
}

func init() {
	agentsCreateCmd.Flags().StringVar(&agentName, "name", "", "Agent name (required)")
	agentsCreateCmd.Flags().StringVar(&agentInstructions, "prompt", "", "Agent instructions")
	agentsCreateCmd.Flags().StringSliceVar(&agentTools, "tool", nil, "Tool to enable (repeatable)")

	agentsUpdateCmd.Flags().StringVar(&agentName, "name", "", "New agent name")
	agentsUpdateCmd.Flags().StringVar(&agentInstructions, "prompt", "", "New agent instructions")
	agentsUpdateCmd.Flags().StringSliceVar(&agentTools, "tool", nil, "Replacement tool set (repeatable)")

	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	agentsCmd.AddCommand(agentsCreateCmd)
	agentsCmd.AddCommand(agentsUpdateCmd)
	agentsCmd.AddCommand(agentsDeleteCmd)
	rootCmd.AddCommand(agentsCmd)
}
