package cmd

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pmorel/db-agent/internal/agent"
	"github.com/pmorel/db-agent/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent from the terminal",
	Long: `The chat command opens an interactive session with the hosted agent.
Type your questions at the prompt; the agent queries the configured
databases through its tools and answers inline. Type 'quit' to exit:
the conversation log is printed and the session's agent and thread are
deleted from the hosted service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	gw, def := newGateway(cfg)

	spinner, _ := pterm.DefaultSpinner.Start("Provisioning agent...")
	hosted, err := gw.EnsureAgent(ctx, def)
	if err != nil {
		spinner.Fail("Could not provision agent")
		return err
	}

	threadID, err := gw.OpenThread(ctx)
	if err != nil {
		spinner.Fail("Could not open conversation thread")
		return err
	}
	spinner.Success("Agent ready")

	pterm.Printf("You're chatting with: %s (%s)\n", hosted.Name, hosted.ID)

	reader := bufio.NewReader(os.Stdin)
	for {
		pterm.Print("Enter a prompt (or type 'quit' to exit): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		prompt := strings.TrimSpace(line)
		if strings.EqualFold(prompt, "quit") {
			break
		}
		if prompt == "" {
			pterm.Println("Please enter a prompt.")
			continue
		}

		if err := gw.Submit(ctx, threadID, "user", prompt); err != nil {
			pterm.Error.Printf("Could not send message: %v\n", err)
			continue
		}

		result, err := gw.RunAndWait(ctx, threadID, hosted.ID)
		if err != nil {
			pterm.Error.Printf("Run error: %v\n", err)
			continue
		}
		if result.Status == agent.RunFailed {
			pterm.Error.Printf("Run failed: %s\n", result.ErrorMessage)
		}

		if answer, err := gw.LatestReply(ctx, threadID); err == nil {
			pterm.Printf("Last Message: %s\n", answer)
		}
	}

	printConversationLog(ctx, gw, threadID)

	// The interactive session owns its agent and thread; remove both so
	// repeated sessions do not accumulate hosted state.
	if err := gw.DeleteThread(ctx, threadID); err != nil {
		pterm.Warning.Printf("Could not delete thread: %v\n", err)
	}
	if err := gw.DeleteAgent(ctx, hosted.ID); err != nil {
		pterm.Warning.Printf("Could not delete agent: %v\n", err)
	}
	return nil
}

// printConversationLog prints the full thread transcript, oldest first.
func printConversationLog(ctx context.Context, svc agent.Service, threadID string) {
	messages, err := svc.ListMessages(ctx, threadID)
	if err != nil {
		pterm.Warning.Printf("Could not fetch conversation log: %v\n", err)
		return
	}

	pterm.Print("\nConversation Log:\n\n")
	for _, msg := range messages {
		pterm.Printf("%s: %s\n\n", msg.Role, msg.Text)
	}
}
