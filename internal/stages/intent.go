package stages

import (
	"context"
	"fmt"

	"designflow/internal/llm"
)

const intentSystemPrompt = `You are an expert Product Owner.
Your job is to analyze a conversation between a user and an assistant, and detect the primary intent.

Classify the intent into one of:
- "bug": Something is broken, not working as expected, or needs fixing
- "feature": A new capability that doesn't exist yet
- "improvement": Enhancement to an existing feature

Also determine:
- summary: One-line summary of the intent
- details: Detailed description of what the user wants
- affectedAreas: Which parts of the product are affected (e.g. "Dashboard", "Request Management", "Reports", "Settings")
- priority: "critical" | "high" | "medium" | "low"
- confidence: 0.0 to 1.0 how confident you are

Return ONLY valid JSON matching this schema:
{
  "type": "bug" | "feature" | "improvement",
  "confidence": number,
  "summary": string,
  "details": string,
  "affectedAreas": string[],
  "priority": "critical" | "high" | "medium" | "low"
}`

// DetectIntent classifies a conversation transcript into a typed intent.
func DetectIntent(ctx context.Context, client llm.Client, conversationText string) (*Intent, error) {
	user := fmt.Sprintf("Analyze this conversation and detect the intent:\n\n%s", conversationText)

	var intent Intent
	if err := callJSON(ctx, client, intentSystemPrompt, user, &intent); err != nil {
		return nil, fmt.Errorf("detect intent: %w", err)
	}
	return &intent, nil
}
