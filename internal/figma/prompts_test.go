package figma

import (
	"strings"
	"testing"

	"designflow/internal/stages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeScreenSpec() *stages.UISpec {
	return &stages.UISpec{
		ScreenList: []stages.Screen{
			{ID: "dashboard", Name: "Dashboard", Description: "Overview", Layout: "full-width",
				Components: []stages.Component{{Type: "table", Name: "Request Table", Interactions: []string{"Sort by column"}}},
				States:     []stages.StateDef{{Name: "loading", Description: "Spinner shown"}},
			},
			{ID: "detail", Name: "Request Detail", Description: "One request", Layout: "dual-pane"},
			{ID: "settings", Name: "Settings", Description: "Preferences", Layout: "form"},
		},
		NavigationFlow: []stages.FlowStep{
			{From: "dashboard", To: "detail", Trigger: "row click"},
		},
	}
}

func TestCraftPrompts(t *testing.T) {
	prd := &stages.PRD{Title: "Feedback Portal", ProblemStatement: "P", ProposedSolution: "S"}
	spec := threeScreenSpec()

	prompts := CraftPrompts(prd, spec, "## Colors\nPrimary #2563EB")
	require.Len(t, prompts, 3)

	assert.True(t, prompts[0].IsFirstScreen)
	assert.False(t, prompts[1].IsFirstScreen)
	assert.False(t, prompts[2].IsFirstScreen)

	// Screen-list order is preserved.
	assert.Equal(t, "dashboard", prompts[0].ScreenID)
	assert.Equal(t, "detail", prompts[1].ScreenID)
	assert.Equal(t, "settings", prompts[2].ScreenID)

	// The initial prompt carries product context and design guidelines.
	assert.Contains(t, prompts[0].Text, "Feedback Portal")
	assert.Contains(t, prompts[0].Text, "Primary #2563EB")
	assert.Contains(t, prompts[0].Text, "Request Table")
	assert.Contains(t, prompts[0].Text, "dashboard -> detail (row click)")

	// Continuations reference the new page and its route, not the PRD.
	assert.Contains(t, prompts[1].Text, `"Request Detail"`)
	assert.Contains(t, prompts[1].Text, "Add route /detail.")
	assert.NotContains(t, prompts[1].Text, "Feedback Portal")
}

func TestCraftPrompts_EmptyScreenList(t *testing.T) {
	prompts := CraftPrompts(&stages.PRD{}, &stages.UISpec{}, "")
	assert.Empty(t, prompts)
}

func TestCraftPrompts_Fallbacks(t *testing.T) {
	spec := &stages.UISpec{ScreenList: []stages.Screen{{ID: "empty", Name: "Empty"}}}
	prompts := CraftPrompts(&stages.PRD{}, spec, "")
	require.Len(t, prompts, 1)

	text := prompts[0].Text
	assert.Contains(t, text, "- Main content area")
	assert.Contains(t, text, "View information and navigate.")
	assert.Contains(t, text, "Default state only.")
	assert.Contains(t, text, "N/A")
}

func TestManualInstructions(t *testing.T) {
	prd := &stages.PRD{Title: "T", ProblemStatement: "P", ProposedSolution: "S"}
	prompts := CraftPrompts(prd, threeScreenSpec(), "ds")

	out := ManualInstructions(prompts, "Acme Design System")

	assert.Contains(t, out, "1. Open https://www.figma.com/make/new")
	assert.Contains(t, out, `"Acme Design System"`)
	assert.Contains(t, out, `Paste the initial prompt for "Dashboard"`)
	assert.Contains(t, out, `Paste the continuation prompt for "Request Detail"`)
	assert.Contains(t, out, "Switch the preview route to /settings")
	assert.Contains(t, out, "--- Prompt 3: Settings ---")

	// Steps are strictly numbered from one.
	for i, line := range []string{"1. ", "2. ", "3. "} {
		assert.True(t, strings.Contains(out, line), "missing step %d", i+1)
	}
}

func TestManualInstructions_NoLibrary(t *testing.T) {
	prompts := []Prompt{{ScreenID: "a", ScreenName: "A", Text: "t", IsFirstScreen: true}}
	out := ManualInstructions(prompts, "")
	assert.NotContains(t, out, "Select a library")
}
