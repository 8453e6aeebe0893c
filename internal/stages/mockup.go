package stages

import (
	"context"
	"fmt"
	"strings"

	"designflow/internal/llm"
)

const mockupSystemPrompt = `You are a Senior UI Designer.

Given a UI Behavior Spec and PRD, generate a design-tool-ready mockup structure.
Focus on describing the FUNCTIONAL layout and content of each screen.
The structure should clearly communicate what elements are on each screen and their relative positioning.

Design direction:
- Professional, enterprise-grade SaaS aesthetic
- Clean layout with clear visual hierarchy
- Desktop-first: 1440x900
- Standard sidebar (240px) + top bar (64px) + content area
- Blue primary (#2563EB), light gray bg (#F8FAFC), proper status colors

Return ONLY valid JSON matching this schema:
{
  "projectName": "string",
  "pages": [
    {
      "name": "string - page name",
      "frames": [
        {
          "name": "string - frame name",
          "screenId": "string - matches UI spec screen id",
          "width": 1440,
          "height": 900,
          "elements": [
            {
              "type": "rectangle|text|frame|component|group",
              "name": "string - descriptive name of what this element represents",
              "x": 0,
              "y": 0,
              "width": 0,
              "height": 0,
              "properties": {
                "fill": "#hex",
                "text": "string - actual label or content text"
              },
              "children": []
            }
          ]
        }
      ]
    }
  ],
  "designTokens": {
    "primaryColor": "#2563EB",
    "backgroundColor": "#F8FAFC",
    "textColor": "#1E293B",
    "borderColor": "#E2E8F0",
    "successColor": "#22C55E",
    "warningColor": "#F59E0B",
    "errorColor": "#EF4444"
  }
}`

// GenerateMockup produces the positioned mockup structure for the design
// tool from the UI spec and PRD.
func GenerateMockup(ctx context.Context, client llm.Client, spec *UISpec, prd *PRD, designSystem string) (*Mockup, error) {
	var screens strings.Builder
	for _, s := range spec.ScreenList {
		names := make([]string, 0, len(s.Components))
		for _, c := range s.Components {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&screens, "### %s (%s)\nLayout: %s\nDescription: %s\nComponents: %s\nData: %s\n\n",
			s.Name, s.ID, s.Layout, s.Description,
			strings.Join(names, ", "), strings.Join(s.DataEntities, ", "))
	}

	var flow strings.Builder
	for _, f := range spec.NavigationFlow {
		fmt.Fprintf(&flow, "%s -> %s [%s]\n", f.From, f.To, f.Trigger)
	}

	prompt := fmt.Sprintf(`## PRD
Title: %s
Solution: %s

## Screens to Design
%s
## Navigation Flow
%s
## Design System
%s

---

Generate a mockup structure with:
1. One page per major screen
2. Each frame at 1440x900 (desktop)
3. Include sidebar, top bar, and content area
4. Every component from the UI spec should be represented as an element
5. Use proper positioning for a clean layout
6. Include meaningful text labels and content
7. Focus on what the user sees, not implementation details`,
		prd.Title, prd.ProposedSolution, screens.String(), flow.String(), designSystem)

	var mockup Mockup
	if err := callJSON(ctx, client, mockupSystemPrompt, prompt, &mockup); err != nil {
		return nil, fmt.Errorf("generate mockup structure: %w", err)
	}
	return &mockup, nil
}
