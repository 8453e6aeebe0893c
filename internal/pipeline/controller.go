package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"designflow/internal/conversation"
	"designflow/internal/figma"
	"designflow/internal/knowledge"
	"designflow/internal/llm"
	"designflow/internal/stages"

	"go.uber.org/zap"
)

// Runner executes the nine-stage pipeline. Collaborators are injected:
// the LLM client, the knowledge retriever, the ticketing client, and the
// design generator. The first five stages are pure transforms and fatal
// on failure; stages six through nine are independent and non-fatal, so
// a ticketing failure never blocks design generation and vice versa.
type Runner struct {
	llm       llm.Client
	retriever *knowledge.Retriever
	ticketer  Ticketer
	designer  Designer
	log       *zap.Logger
	out       io.Writer
}

// NewRunner wires a pipeline runner. Ticketer and Designer may be nil
// when those stages will be skipped.
func NewRunner(client llm.Client, retriever *knowledge.Retriever, ticketer Ticketer, designer Designer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		llm:       client,
		retriever: retriever,
		ticketer:  ticketer,
		designer:  designer,
		log:       logger,
		out:       os.Stdout,
	}
}

// SetOutput redirects console narration, used by tests.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Runner) banner(step int, name string) {
	r.printf("\n=== Step %d/9: %s ===", step, name)
}

// Run executes the pipeline over a recorded conversation. Stage outputs
// are written to the artifact store as each stage completes, before the
// next stage starts. The returned Result references every stage, with
// zero values for skipped or failed non-fatal stages; the error is
// non-nil only for a fatal stage failure, and the partial Result is
// still returned alongside it.
func (r *Runner) Run(ctx context.Context, session *conversation.Session, store *ArtifactStore, opts Options) (*Result, error) {
	result := &Result{
		RunID:       store.RunID(),
		ArtifactDir: store.Dir(),
	}
	conversationText := session.Text()

	record := func(stage string, err error, output any) {
		sr := StageResult{Stage: stage, Success: err == nil}
		if err != nil {
			sr.Error = err.Error()
		} else if output != nil {
			if raw, mErr := json.Marshal(output); mErr == nil {
				sr.Output = raw
			}
		}
		result.Stages = append(result.Stages, sr)
	}
	fatal := func(stage string, err error) (*Result, error) {
		record(stage, err, nil)
		r.saveText(store, stage+"-error", "txt", err.Error())
		return result, &StageError{Stage: stage, Err: err}
	}

	// Stage 1: intent detection
	r.banner(1, "Intent Detection")
	intent, err := stages.DetectIntent(ctx, r.llm, conversationText)
	if err != nil {
		return fatal("intent", err)
	}
	result.Intent = intent
	record("intent", nil, intent)
	r.printf("  type=%s priority=%s confidence=%.0f%%", intent.Type, intent.Priority, intent.Confidence*100)
	r.printf("  summary: %s", intent.Summary)
	r.mustSave(store, "intent", intent)

	// Stage 2: knowledge retrieval
	r.banner(2, "Knowledge Retrieval")
	kctx, err := r.retriever.Retrieve(intent.Details, intent.AffectedAreas)
	if err != nil {
		return fatal("knowledge", err)
	}
	result.Knowledge = kctx
	record("knowledge", nil, kctx)
	r.printf("  %d relevant chunks retrieved", len(kctx.Chunks))
	for i, c := range kctx.Chunks {
		if i >= 5 {
			break
		}
		r.printf("    - [%s] %s (score %.0f)", c.Source, c.Section, c.RelevanceScore)
	}
	r.mustSave(store, "knowledge", kctx)

	// Stage 3: context enrichment
	r.banner(3, "Context Enrichment")
	enriched, err := stages.EnrichContext(ctx, r.llm, conversationText, intent, kctx)
	if err != nil {
		return fatal("enrichment", err)
	}
	result.Enriched = enriched
	record("enrichment", nil, enriched)
	r.printf("  merged summary: %d chars", len(enriched.MergedSummary))
	r.saveText(store, "enriched", "md", enriched.MergedSummary)

	// Stage 4: PRD generation
	r.banner(4, "Product Requirements")
	prd, err := stages.GeneratePRD(ctx, r.llm, enriched)
	if err != nil {
		return fatal("prd", err)
	}
	result.PRD = prd
	record("prd", nil, prd)
	r.printf("  title: %s", prd.Title)
	r.printf("  %d user stories, %d acceptance criteria, complexity=%s",
		len(prd.UserStories), len(prd.AcceptanceCriteria), prd.EstimatedComplexity)
	r.mustSave(store, "prd", prd)

	// Stage 5: UI behavior spec
	r.banner(5, "UI Behavior Specification")
	uiSpec, err := stages.GenerateUISpec(ctx, r.llm, prd, enriched, kctx.DesignSystem)
	if err != nil {
		return fatal("ui-spec", err)
	}
	result.UISpec = uiSpec
	record("ui-spec", nil, uiSpec)
	r.printf("  %d screens, %d flows, %d interaction rules",
		len(uiSpec.ScreenList), len(uiSpec.NavigationFlow), len(uiSpec.InteractionRules))
	for _, s := range uiSpec.ScreenList {
		r.printf("    - %s (%s): %d components", s.Name, s.Layout, len(s.Components))
	}
	r.mustSave(store, "ui-spec", uiSpec)

	// Stage 6: mockup structure export. Reference output, non-fatal.
	r.banner(6, "Mockup Structure")
	mockup, err := stages.GenerateMockup(ctx, r.llm, uiSpec, prd, kctx.DesignSystem)
	record("mockup", err, mockup)
	if err != nil {
		r.printf("  mockup structure failed: %v", err)
		r.log.Warn("mockup structure failed", zap.Error(err))
	} else {
		result.Mockup = mockup
		r.printf("  %d pages structured", len(mockup.Pages))
		r.mustSave(store, "mockup", mockup)
	}

	// Stage 7: ticket creation. Runs before design generation so the
	// team can review the plan while the design renders.
	r.banner(7, "Ticket Creation")
	switch {
	case opts.SkipTickets:
		record("tickets", nil, nil)
		r.printf("  skipped (--skip-tickets)")
	case r.ticketer == nil:
		record("tickets", fmt.Errorf("no ticketing client configured"), nil)
		r.printf("  no ticketing client configured")
	default:
		err := r.createTickets(ctx, result, intent, prd, uiSpec, conversationText)
		record("tickets", err, result.Tickets)
		if err != nil {
			r.printf("  ticketing failed: %v (pipeline continues)", err)
			r.log.Warn("ticketing failed", zap.Error(err))
		}
	}
	r.mustSave(store, "tickets", result.Tickets)

	// Stage 8: design generation.
	r.banner(8, "Design Generation")
	prompts := figma.CraftPrompts(prd, uiSpec, kctx.DesignSystem)
	r.printf("  %d screen prompts crafted", len(prompts))
	r.mustSave(store, "design-prompts", prompts)

	switch {
	case opts.SkipDesign:
		record("design", nil, nil)
		r.printf("  skipped (--skip-design); prompts saved for manual use")
	case r.designer == nil:
		record("design", fmt.Errorf("no design generator configured"), nil)
		r.printf("  no design generator configured; prompts saved for manual use")
	default:
		flow, err := r.designer.CreateDesign(ctx, prompts, opts.MaxScreens)
		if flow != nil {
			result.DesignURL = flow.URL
			result.Screenshots = flow.ScreenshotPaths
		}
		record("design", err, flow)
		if err != nil {
			r.printf("  design generation failed: %v", err)
			r.log.Warn("design generation failed", zap.Error(err))
			r.saveText(store, "manual-steps", "txt", figma.ManualInstructions(prompts, ""))
			r.printf("  manual steps written to the artifact directory")
		} else {
			r.mustSave(store, "design-result", flow)
			r.printf("  design created: %s", flow.URL)
			r.printf("  screens: %d, screenshots: %d", len(flow.ScreensGenerated), len(flow.ScreenshotPaths))
		}
	}

	// Stage 9: attach the design link to the epic.
	r.banner(9, "Ticket Update")
	switch {
	case result.Tickets.EpicID == "":
		record("ticket-update", nil, nil)
		r.printf("  no epic to update")
	case result.DesignURL == "":
		record("ticket-update", nil, nil)
		r.printf("  no design URL to attach")
	default:
		err := r.ticketer.UpdateTicketWithDesign(ctx, result.Tickets.EpicID, result.DesignURL, "")
		record("ticket-update", err, nil)
		if err != nil {
			r.printf("  ticket update failed: %v", err)
			r.log.Warn("ticket update failed", zap.Error(err))
		} else {
			r.printf("  design link attached to epic")
		}
	}

	r.mustSave(store, "full-result", result)
	r.summary(result)
	return result, nil
}

func (r *Runner) createTickets(ctx context.Context, result *Result, intent *stages.Intent, prd *stages.PRD, uiSpec *stages.UISpec, conversationText string) error {
	feedbackID, err := r.ticketer.CreateFeedback(ctx, intent, conversationText)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	result.Tickets.FeedbackID = feedbackID

	epicID, err := r.ticketer.CreateEpic(ctx, prd, intent)
	if err != nil {
		return fmt.Errorf("create epic: %w", err)
	}
	result.Tickets.EpicID = epicID

	taskIDs, err := r.ticketer.CreateTasks(ctx, prd, uiSpec, epicID)
	if err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}
	result.Tickets.TaskIDs = taskIDs
	r.printf("  feedback, epic, and %d tasks created", len(taskIDs))
	return nil
}

// summary prints the final run report. Skipped or failed independent
// stages show N/A, never silence.
func (r *Runner) summary(result *Result) {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	r.printf("\n=== Pipeline Complete ===")
	r.printf("  run: %s", result.RunID)
	if result.Intent != nil {
		r.printf("  intent: %s - %s", result.Intent.Type, result.Intent.Summary)
	}
	if result.PRD != nil {
		r.printf("  prd: %s", result.PRD.Title)
	}
	if result.UISpec != nil {
		r.printf("  screens: %d", len(result.UISpec.ScreenList))
	}
	r.printf("  design: %s", orNA(result.DesignURL))
	r.printf("  epic: %s", orNA(result.Tickets.EpicID))
	r.printf("  tasks: %d", len(result.Tickets.TaskIDs))
	r.printf("  artifacts: %s", result.ArtifactDir)
}

// mustSave persists a JSON artifact; a failed write is logged, not
// fatal, so disk problems late in a run do not discard LLM work.
func (r *Runner) mustSave(store *ArtifactStore, label string, v any) {
	if _, err := store.SaveJSON(label, v); err != nil {
		r.log.Warn("artifact write failed", zap.String("label", label), zap.Error(err))
	}
}

func (r *Runner) saveText(store *ArtifactStore, label, ext, content string) {
	if _, err := store.SaveText(label, ext, content); err != nil {
		r.log.Warn("artifact write failed", zap.String("label", label), zap.Error(err))
	}
}
