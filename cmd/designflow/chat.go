package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"designflow/internal/conversation"
	"designflow/internal/llm"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive product conversation",
	Long: `Chat with the product consultant about a bug, feature, or improvement.
Type "done" to end the session; the conversation is saved and can be fed
into the pipeline with "designflow pipeline <session-id>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

const chatSystemPromptTemplate = `You are a product consultant for a SaaS platform.
You help users articulate bugs, feature requests, and improvements.

%s

## Guidelines
- Reference actual screens, flows, and components when answering.
- Ask clarifying questions to fully understand needs.
- Be specific about which features and screens are involved.
- Keep responses focused and concise.

When the user says "done" or "end session", acknowledge and summarize the request.`

// chatKnowledgeBudget caps the knowledge context loaded into the chat
// system prompt.
const chatKnowledgeBudget = 25000

func runChat(ctx context.Context) error {
	client, err := llm.NewClient(cfg.AI)
	if err != nil {
		return err
	}

	systemPrompt := fmt.Sprintf(chatSystemPromptTemplate, loadChatKnowledge())
	session := conversation.NewSession()
	store := conversation.NewStore(cfg.Paths.Sessions)

	fmt.Println("designflow chat - describe the bug, feature, or improvement.")
	fmt.Println("Type \"done\" to end the session, \"quit\" to discard it.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit":
			fmt.Println("Session discarded.")
			return nil
		case "done", "end session":
			session.End()
			if err := store.Save(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Printf("\nSession saved: %s\n", session.ID)
			fmt.Printf("Run the pipeline with:\n  designflow pipeline %s\n", session.ID)
			return nil
		}

		session.Append("user", input)

		reply, err := client.CompleteWithSystem(ctx, systemPrompt, session.Text())
		if err != nil {
			fmt.Printf("  (model error: %v - your message was saved, you can continue)\n", err)
			continue
		}
		session.Append("assistant", reply)
		fmt.Printf("\nconsultant> %s\n\n", reply)
	}

	// EOF on stdin: keep what we have.
	if len(session.Messages) > 0 {
		session.End()
		if err := store.Save(session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("\nSession saved: %s\n", session.ID)
	}
	return nil
}

// loadChatKnowledge assembles a compact product summary from the
// knowledge base for the chat system prompt. Missing files are skipped.
func loadChatKnowledge() string {
	var sb strings.Builder
	priority := []string{"flow.md", "features.md", "overview.md"}

	for _, name := range priority {
		data, err := os.ReadFile(filepath.Join(cfg.Paths.KnowledgeBase, name))
		if err != nil {
			continue
		}
		content := string(data)
		if len(content) > 8000 {
			content = content[:8000] + "\n...[truncated]"
		}
		if sb.Len()+len(content) > chatKnowledgeBudget {
			break
		}
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", name, content)
	}

	if sb.Len() == 0 {
		return "## Product Knowledge\nNo knowledge base found; ask the user to describe the product context."
	}
	return "## Product Knowledge\n" + sb.String()
}
