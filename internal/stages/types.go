// Package stages implements the pipeline's LLM-backed transforms. Each stage
// is one prompt-and-parse call: build a prompt, ask the model for JSON,
// decode into a typed payload, and validate it at the boundary. A payload
// that fails to decode or validate is retried once before the stage fails.
package stages

import "fmt"

// Intent is the classified purpose of a conversation.
type Intent struct {
	Type          string   `json:"type"` // bug, feature, improvement
	Confidence    float64  `json:"confidence"`
	Summary       string   `json:"summary"`
	Details       string   `json:"details"`
	AffectedAreas []string `json:"affectedAreas"`
	Priority      string   `json:"priority"` // critical, high, medium, low
}

// Validate checks the decoded intent against its schema.
func (i *Intent) Validate() error {
	switch i.Type {
	case "bug", "feature", "improvement":
	default:
		return fmt.Errorf("invalid intent type: %q", i.Type)
	}
	if i.Summary == "" {
		return fmt.Errorf("intent summary is empty")
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("intent confidence out of range: %v", i.Confidence)
	}
	switch i.Priority {
	case "critical", "high", "medium", "low":
	default:
		return fmt.Errorf("invalid intent priority: %q", i.Priority)
	}
	return nil
}

// Enriched merges a conversation with retrieved product knowledge.
type Enriched struct {
	Intent        Intent `json:"intent"`
	MergedSummary string `json:"mergedSummary"`
}

// UserStory is one "as a / I want / so that" entry in a PRD.
type UserStory struct {
	AsA    string `json:"asA"`
	IWant  string `json:"iWant"`
	SoThat string `json:"soThat"`
}

// PRD is the lean product requirements document produced by stage four.
type PRD struct {
	Title               string      `json:"title"`
	EpicSummary         string      `json:"epicSummary"`
	ProblemStatement    string      `json:"problemStatement"`
	ProposedSolution    string      `json:"proposedSolution"`
	UserStories         []UserStory `json:"userStories"`
	AcceptanceCriteria  []string    `json:"acceptanceCriteria"`
	OutOfScope          []string    `json:"outOfScope"`
	AffectedRoles       []string    `json:"affectedRoles"`
	RelatedFeatures     []string    `json:"relatedFeatures"`
	Priority            string      `json:"priority"`
	EstimatedComplexity string      `json:"estimatedComplexity"` // small, medium, large, epic
}

// Validate checks the decoded PRD against its schema.
func (p *PRD) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("PRD title is empty")
	}
	if p.ProblemStatement == "" {
		return fmt.Errorf("PRD problem statement is empty")
	}
	if len(p.UserStories) == 0 {
		return fmt.Errorf("PRD has no user stories")
	}
	switch p.EstimatedComplexity {
	case "small", "medium", "large", "epic":
	default:
		return fmt.Errorf("invalid PRD complexity: %q", p.EstimatedComplexity)
	}
	return nil
}

// Component is a functional UI element on a screen.
type Component struct {
	Type         string            `json:"type"`
	Name         string            `json:"name"`
	Props        map[string]string `json:"props"`
	Interactions []string          `json:"interactions"`
}

// StateDef describes one screen or global state.
type StateDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Transitions []struct {
		To      string `json:"to"`
		Trigger string `json:"trigger"`
	} `json:"transitions"`
}

// Screen is one screen in the UI behavior spec.
type Screen struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Layout       string      `json:"layout"` // dual-pane, full-width, form, modal, map-view
	Components   []Component `json:"components"`
	States       []StateDef  `json:"states"`
	DataEntities []string    `json:"dataEntities"`
}

// FlowStep is one edge in the navigation flow.
type FlowStep struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Trigger   string `json:"trigger"`
	Condition string `json:"condition,omitempty"`
}

// InteractionRule binds a user event on a component to observed behavior.
type InteractionRule struct {
	Screen     string `json:"screen"`
	Component  string `json:"component"`
	Event      string `json:"event"`
	Behavior   string `json:"behavior"`
	Validation string `json:"validation,omitempty"`
}

// UISpec is the full UI behavior specification from stage five.
type UISpec struct {
	ScreenList       []Screen          `json:"screenList"`
	NavigationFlow   []FlowStep        `json:"navigationFlow"`
	GlobalStates     []StateDef        `json:"globalStates"`
	InteractionRules []InteractionRule `json:"interactionRules"`
}

// Validate checks the decoded UI spec against its schema.
func (u *UISpec) Validate() error {
	if len(u.ScreenList) == 0 {
		return fmt.Errorf("UI spec has no screens")
	}
	seen := make(map[string]bool, len(u.ScreenList))
	for i, s := range u.ScreenList {
		if s.ID == "" {
			return fmt.Errorf("screen %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate screen id: %q", s.ID)
		}
		seen[s.ID] = true
		if s.Name == "" {
			return fmt.Errorf("screen %q has no name", s.ID)
		}
	}
	return nil
}

// MockupElement is a positioned element in the mockup structure export.
type MockupElement struct {
	Type       string          `json:"type"` // rectangle, text, frame, component, group
	Name       string          `json:"name"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Properties map[string]any  `json:"properties,omitempty"`
	Children   []MockupElement `json:"children,omitempty"`
}

// MockupFrame corresponds to one screen frame in the design tool.
type MockupFrame struct {
	Name     string          `json:"name"`
	ScreenID string          `json:"screenId"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Elements []MockupElement `json:"elements"`
}

// MockupPage groups frames.
type MockupPage struct {
	Name   string        `json:"name"`
	Frames []MockupFrame `json:"frames"`
}

// Mockup is the design-tool structure export from the non-blocking stage.
type Mockup struct {
	ProjectName  string            `json:"projectName"`
	Pages        []MockupPage      `json:"pages"`
	DesignTokens map[string]string `json:"designTokens"`
}

// Validate checks the decoded mockup against its schema.
func (m *Mockup) Validate() error {
	if m.ProjectName == "" {
		return fmt.Errorf("mockup project name is empty")
	}
	if len(m.Pages) == 0 {
		return fmt.Errorf("mockup has no pages")
	}
	return nil
}
