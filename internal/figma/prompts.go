package figma

import (
	"fmt"
	"strings"

	"designflow/internal/stages"
)

// Prompt is one generation prompt for the design tool. The first prompt
// establishes the visual theme; later prompts are continuations that must
// preserve it, so order is significant.
type Prompt struct {
	ScreenID      string `json:"screenId"`
	ScreenName    string `json:"screenName"`
	Text          string `json:"prompt"`
	IsFirstScreen bool   `json:"isFirstScreen"`
}

// CraftPrompts builds one prompt per screen in the UI spec, in screen-list
// order. An empty screen list yields an empty slice.
func CraftPrompts(prd *stages.PRD, spec *stages.UISpec, designSystem string) []Prompt {
	prompts := make([]Prompt, 0, len(spec.ScreenList))
	for i, screen := range spec.ScreenList {
		text := ""
		if i == 0 {
			text = buildInitialPrompt(prd, spec, screen, designSystem)
		} else {
			text = buildContinuationPrompt(screen)
		}
		prompts = append(prompts, Prompt{
			ScreenID:      screen.ID,
			ScreenName:    screen.Name,
			Text:          text,
			IsFirstScreen: i == 0,
		})
	}
	return prompts
}

// buildInitialPrompt describes the first screen with full product context.
// It stays user-centric: component names and plain-language actions, no
// technical props.
func buildInitialPrompt(prd *stages.PRD, spec *stages.UISpec, screen stages.Screen, designSystem string) string {
	var flows []string
	for _, f := range spec.NavigationFlow {
		if f.From == screen.ID || f.To == screen.ID {
			flows = append(flows, fmt.Sprintf("%s -> %s (%s)", f.From, f.To, f.Trigger))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Design Brief: %s\n\n", screen.Name)
	fmt.Fprintf(&sb, "## Product Context\n%s - %s\nSolution: %s\n\n", prd.Title, prd.ProblemStatement, prd.ProposedSolution)
	fmt.Fprintf(&sb, "## What This Screen Does\n%s\n\n", screen.Description)
	fmt.Fprintf(&sb, "## Layout Style\n%s layout, desktop 1440x900.\n\n", screen.Layout)
	fmt.Fprintf(&sb, "## Elements to Include\n%s\n\n", componentList(screen))
	fmt.Fprintf(&sb, "## What Users Can Do Here\n%s\n\n", userActions(screen))
	fmt.Fprintf(&sb, "## Screen States\n%s\n\n", statesSummary(screen))
	fmt.Fprintf(&sb, "## Data Shown\n%s\n\n", dataShown(screen))
	if len(flows) > 0 {
		fmt.Fprintf(&sb, "## Navigation\n%s\n\n", strings.Join(flows, ", "))
	}
	fmt.Fprintf(&sb, "## Design Guidelines\n%s\n\n", designSystem)
	sb.WriteString(`## Style Direction
- Professional and clean, suitable for an enterprise SaaS platform
- Follow the design system colors, spacing, and typography above
- Make it production-ready and visually polished
- Keep it consistent with the platform aesthetic`)

	return sb.String()
}

// buildContinuationPrompt describes one additional screen for an ongoing
// generation conversation.
func buildContinuationPrompt(screen stages.Screen) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Now add a new page: %q\n\n", screen.Name)
	fmt.Fprintf(&sb, "## What This Screen Does\n%s\n\n", screen.Description)
	fmt.Fprintf(&sb, "## Layout\n%s layout.\n\n", screen.Layout)
	fmt.Fprintf(&sb, "## Elements to Include\n%s\n\n", componentList(screen))
	fmt.Fprintf(&sb, "## What Users Can Do\n%s\n\n", userActions(screen))
	fmt.Fprintf(&sb, "## Data Shown\n%s\n\n", dataShown(screen))
	fmt.Fprintf(&sb, "Keep the same theme, style, and design system as previous screens.\nAdd route /%s.", screen.ID)
	return sb.String()
}

func componentList(screen stages.Screen) string {
	var lines []string
	for _, c := range screen.Components {
		lines = append(lines, "- "+c.Name)
	}
	if len(lines) == 0 {
		return "- Main content area"
	}
	return strings.Join(lines, "\n")
}

func userActions(screen stages.Screen) string {
	var lines []string
	for _, c := range screen.Components {
		for _, action := range c.Interactions {
			if action != "" {
				lines = append(lines, "- "+action)
			}
		}
	}
	if len(lines) == 0 {
		return "View information and navigate."
	}
	return strings.Join(lines, "\n")
}

func statesSummary(screen stages.Screen) string {
	var lines []string
	for _, s := range screen.States {
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Name, s.Description))
	}
	if len(lines) == 0 {
		return "Default state only."
	}
	return strings.Join(lines, "\n")
}

func dataShown(screen stages.Screen) string {
	if len(screen.DataEntities) == 0 {
		return "N/A"
	}
	return strings.Join(screen.DataEntities, ", ")
}

// ManualInstructions renders a numbered, human-followable step list for
// completing the generation flow by hand. It is the fallback emitted when
// browser automation is unavailable or fails partway.
func ManualInstructions(prompts []Prompt, libraryName string) string {
	var sb strings.Builder
	sb.WriteString("Manual design generation steps:\n\n")

	step := 1
	write := func(format string, args ...any) {
		fmt.Fprintf(&sb, "%d. ", step)
		fmt.Fprintf(&sb, format, args...)
		sb.WriteString("\n")
		step++
	}

	write("Open https://www.figma.com/make/new in a logged-in browser")
	if libraryName != "" {
		write("Click %q and pick %q in the library dialog", "Select a library", libraryName)
	}
	for i, p := range prompts {
		if p.IsFirstScreen {
			write("Paste the initial prompt for %q into the prompt box and submit", p.ScreenName)
		} else {
			write("Paste the continuation prompt for %q into the %q box and submit", p.ScreenName, "Ask for changes")
		}
		write("Wait for generation to finish (the feedback controls appear)")
		if i > 0 {
			write("Switch the preview route to /%s", p.ScreenID)
		}
	}
	write("Copy the design URL from the address bar")

	sb.WriteString("\nPrompts:\n")
	for i, p := range prompts {
		fmt.Fprintf(&sb, "\n--- Prompt %d: %s ---\n%s\n", i+1, p.ScreenName, p.Text)
	}
	return sb.String()
}
