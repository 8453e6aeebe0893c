package stages

import (
	"context"
	"fmt"
	"strings"

	"designflow/internal/knowledge"
	"designflow/internal/llm"
)

const enrichSystemPrompt = `You are an expert Product Analyst.

Your job is to merge a user conversation with relevant product knowledge into a single, cohesive summary that captures:
1. What the user wants (from conversation)
2. How it relates to existing product features (from knowledge base)
3. What constraints exist (from design system & product rules)
4. What gaps exist between current product and user's request

Be specific, cite actual product features and screens when relevant.
Write in clear, structured format with sections.
Output should be comprehensive enough for a Product Owner to write a PRD from it.`

// maxKnowledgeChars caps the knowledge text included in the enrichment
// prompt, roughly 15k tokens.
const maxKnowledgeChars = 60000

// EnrichContext merges the conversation, detected intent, and retrieved
// knowledge into one analysis document. The output is free text, not JSON.
func EnrichContext(ctx context.Context, client llm.Client, conversationText string, intent *Intent, kctx *knowledge.Context) (*Enriched, error) {
	var kb strings.Builder
	for _, c := range kctx.Chunks {
		block := fmt.Sprintf("### %s (from %s)\n%s\n\n---\n\n", c.Section, c.Source, c.Content)
		if kb.Len()+len(block) > maxKnowledgeChars {
			break
		}
		kb.WriteString(block)
	}

	prompt := fmt.Sprintf(`## Conversation
%s

## Detected Intent
- Type: %s
- Summary: %s
- Details: %s
- Affected Areas: %s
- Priority: %s

## Relevant Product Knowledge
%s

## Design System
%s

---

Please create a comprehensive MERGED SUMMARY that combines all the above into a single analysis document. Structure it as:

1. **User Request Summary** - What the user wants in clear terms
2. **Current Product State** - How the product currently handles related features
3. **Gap Analysis** - What's missing or needs to change
4. **Design Constraints** - UI patterns, layouts, and components that must be followed
5. **Impact Assessment** - Which roles, screens, and features are affected
6. **Recommendations** - Suggested approach based on product knowledge`,
		conversationText, intent.Type, intent.Summary, intent.Details,
		strings.Join(intent.AffectedAreas, ", "), intent.Priority,
		kb.String(), kctx.DesignSystem)

	summary, err := client.CompleteWithSystem(ctx, enrichSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("enrich context: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("enrich context: model returned empty summary")
	}

	return &Enriched{Intent: *intent, MergedSummary: summary}, nil
}
