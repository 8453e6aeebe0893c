package stages

import (
	"context"
	"fmt"
	"strings"

	"designflow/internal/llm"
)

const prdSystemPrompt = `You are a Senior Product Owner.

Given an enriched context (conversation analysis + product knowledge + design system),
you must produce a Lean PRD (Product Requirements Document).

The product is used by:
- Owners: Full access, org config, financial reports, user management
- Admins: Daily operations, requests, reports, org config
- Managers: Request approval, monitoring, limited reports

You MUST return ONLY valid JSON matching this exact schema:
{
  "title": "string - concise PRD title",
  "epicSummary": "string - one paragraph epic summary",
  "problemStatement": "string - what problem does this solve",
  "proposedSolution": "string - high-level solution description",
  "userStories": [
    {
      "asA": "string - role (Owner/Admin/Manager/User)",
      "iWant": "string - desired action",
      "soThat": "string - expected benefit"
    }
  ],
  "acceptanceCriteria": ["string - measurable criteria"],
  "outOfScope": ["string - explicitly excluded items"],
  "affectedRoles": ["Owner", "Admin", "Manager"],
  "relatedFeatures": ["string - existing features affected"],
  "priority": "critical|high|medium|low",
  "estimatedComplexity": "small|medium|large|epic"
}`

// GeneratePRD turns the enriched analysis into a lean PRD.
func GeneratePRD(ctx context.Context, client llm.Client, enriched *Enriched) (*PRD, error) {
	prompt := fmt.Sprintf(`## Enriched Context Analysis

### Intent
- Type: %s
- Summary: %s
- Priority: %s
- Affected Areas: %s

### Merged Analysis
%s

---

Based on this analysis, generate a comprehensive Lean PRD.
Ensure user stories cover all affected roles.
Be specific about screens and components.`,
		enriched.Intent.Type, enriched.Intent.Summary, enriched.Intent.Priority,
		strings.Join(enriched.Intent.AffectedAreas, ", "), enriched.MergedSummary)

	var prd PRD
	if err := callJSON(ctx, client, prdSystemPrompt, prompt, &prd); err != nil {
		return nil, fmt.Errorf("generate PRD: %w", err)
	}
	return &prd, nil
}
