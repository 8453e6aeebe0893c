// Package pipeline orchestrates the conversation-to-design run: LLM
// stages, ticket creation, and design generation, with every stage's
// output persisted to the run's artifact directory.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"designflow/internal/figma"
	"designflow/internal/knowledge"
	"designflow/internal/stages"
)

// Options controls one pipeline run.
type Options struct {
	SkipDesign  bool
	SkipTickets bool
	Verbose     bool
	// MaxScreens bounds design generation. Zero means all screens.
	MaxScreens int
}

// StageResult records one stage's outcome. Written once, never mutated.
// Output carries the stage's payload as raw JSON; the controller never
// looks inside it.
type StageResult struct {
	Stage   string          `json:"stage"`
	Success bool            `json:"success"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Tickets holds the created ticket IDs. Empty IDs mean the stage was
// skipped or failed.
type Tickets struct {
	FeedbackID string   `json:"feedbackId,omitempty"`
	EpicID     string   `json:"epicId,omitempty"`
	TaskIDs    []string `json:"taskIds,omitempty"`
}

// Result aggregates every stage's output for one run. Stages that were
// skipped or failed hold their zero values, never missing entries: the
// stage list always names all nine stages.
type Result struct {
	RunID       string             `json:"runId"`
	ArtifactDir string             `json:"artifactDir"`
	Intent      *stages.Intent     `json:"intent,omitempty"`
	Knowledge   *knowledge.Context `json:"knowledge,omitempty"`
	Enriched    *stages.Enriched   `json:"enriched,omitempty"`
	PRD         *stages.PRD        `json:"prd,omitempty"`
	UISpec      *stages.UISpec     `json:"uiSpec,omitempty"`
	Mockup      *stages.Mockup     `json:"mockup,omitempty"`
	Tickets     Tickets            `json:"tickets"`
	DesignURL   string             `json:"designUrl,omitempty"`
	Screenshots []string           `json:"screenshots,omitempty"`
	Stages      []StageResult      `json:"stages"`
}

// StageError is a fatal failure in one of the first five stages. It
// aborts the run; the artifacts written so far are preserved.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Ticketer is the ticketing collaborator. *notion.Client implements it;
// tests substitute fakes to exercise stage isolation.
type Ticketer interface {
	CreateFeedback(ctx context.Context, intent *stages.Intent, conversationSummary string) (string, error)
	CreateEpic(ctx context.Context, prd *stages.PRD, intent *stages.Intent) (string, error)
	CreateTasks(ctx context.Context, prd *stages.PRD, spec *stages.UISpec, epicID string) ([]string, error)
	UpdateTicketWithDesign(ctx context.Context, pageID, designURL, wireframePath string) error
}

// Designer is the design-generation collaborator. *figma.Adapter
// implements it.
type Designer interface {
	CreateDesign(ctx context.Context, prompts []figma.Prompt, maxScreens int) (*figma.FlowResult, error)
}
