package stages

import (
	"context"
	"fmt"
	"strings"

	"designflow/internal/llm"
)

const uiSpecSystemPrompt = `You are a Senior UX Architect.

Given a Lean PRD and enriched context, generate a UI Behavior Specification that describes
WHAT the user sees and does, NOT how to implement it in code.

IMPORTANT RULES:
- Component "props" should describe FUNCTIONAL properties in plain language (e.g. "placeholder": "Search...", "columns": "Name, Status, Date").
- DO NOT include CSS properties like backgroundColor, borderStyle, maxWidth, padding, fontSize, borderRadius, opacity, etc.
- DO NOT include implementation details like fontFamily, textAlign, overlayTexture etc.
- Keep descriptions readable by non-technical stakeholders (Product Owners, Designers).
- Focus on WHAT the component does and shows, not HOW it looks at CSS level.
- The design system handles visual styling; you only describe behavior and content.

Return ONLY valid JSON matching this schema:
{
  "screenList": [
    {
      "id": "string - unique screen id (e.g. 'dashboard-overview', 'request-detail')",
      "name": "string - human-readable name",
      "description": "string - 1-2 sentences explaining what this screen does for the user",
      "layout": "dual-pane|full-width|form|modal|map-view",
      "components": [
        {
          "type": "string - component type (e.g. DataTable, StatCard, Form, Modal)",
          "name": "string - descriptive component name",
          "props": { "FUNCTIONAL props only - e.g. placeholder, columns, label, options. NO CSS." },
          "interactions": ["string - what the user can do, in plain language"]
        }
      ],
      "states": [
        {
          "name": "string",
          "description": "string - what this state means for the user",
          "transitions": [{"to": "string", "trigger": "string"}]
        }
      ],
      "dataEntities": ["string - data entities used"]
    }
  ],
  "navigationFlow": [
    {
      "from": "string - screen id",
      "to": "string - screen id",
      "trigger": "string - what triggers navigation",
      "condition": "string - optional condition"
    }
  ],
  "globalStates": [
    {
      "name": "string",
      "description": "string",
      "transitions": [{"to": "string", "trigger": "string"}]
    }
  ],
  "interactionRules": [
    {
      "screen": "string - screen id",
      "component": "string - component name",
      "event": "string - click/hover/submit/etc",
      "behavior": "string - what happens from the user's perspective",
      "validation": "string - optional validation rule"
    }
  ]
}`

// GenerateUISpec produces the UI behavior specification from the PRD and
// enriched analysis, constrained by the design system.
func GenerateUISpec(ctx context.Context, client llm.Client, prd *PRD, enriched *Enriched, designSystem string) (*UISpec, error) {
	var stories strings.Builder
	for _, s := range prd.UserStories {
		fmt.Fprintf(&stories, "- As a %s, I want %s, so that %s\n", s.AsA, s.IWant, s.SoThat)
	}
	var criteria strings.Builder
	for _, c := range prd.AcceptanceCriteria {
		criteria.WriteString("- " + c + "\n")
	}

	prompt := fmt.Sprintf(`## Lean PRD
- Title: %s
- Problem: %s
- Solution: %s
- Affected Roles: %s
- Related Features: %s
- Complexity: %s

### User Stories
%s
### Acceptance Criteria
%s
## Design System
%s

## Context Summary
%s

---

Generate a comprehensive UI Behavior Spec that:
1. Lists all screens needed (new and modified existing screens)
2. Defines the navigation flow between screens
3. Specifies component states and transitions
4. Defines interaction rules for every interactive element
5. Follows the existing design patterns strictly
6. Considers all affected roles and their permissions`,
		prd.Title, prd.ProblemStatement, prd.ProposedSolution,
		strings.Join(prd.AffectedRoles, ", "), strings.Join(prd.RelatedFeatures, ", "),
		prd.EstimatedComplexity, stories.String(), criteria.String(),
		designSystem, enriched.MergedSummary)

	var spec UISpec
	if err := callJSON(ctx, client, uiSpecSystemPrompt, prompt, &spec); err != nil {
		return nil, fmt.Errorf("generate UI spec: %w", err)
	}
	return &spec, nil
}
