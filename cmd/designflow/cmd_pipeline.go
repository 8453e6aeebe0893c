package main

import (
	"fmt"

	"designflow/internal/conversation"
	"designflow/internal/figma"
	"designflow/internal/knowledge"
	"designflow/internal/llm"
	"designflow/internal/notion"
	"designflow/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	skipDesign  bool
	skipTickets bool
	maxScreens  int
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [session-id]",
	Short: "Run the full pipeline over a saved conversation",
	Long: `Runs the conversation through all nine stages: intent detection,
knowledge retrieval, context enrichment, PRD, UI behavior spec, mockup
structure, ticket creation, design generation, and ticket update.

Stage outputs are written to a run-scoped directory under the configured
output path as each stage completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := conversation.NewStore(cfg.Paths.Sessions)
		session, err := store.Load(args[0])
		if err != nil {
			return fmt.Errorf("load session %q: %w", args[0], err)
		}

		client, err := llm.NewClient(cfg.AI)
		if err != nil {
			return err
		}
		retriever, err := knowledge.NewRetriever(cfg.Paths.KnowledgeBase)
		if err != nil {
			return err
		}

		var ticketer pipeline.Ticketer
		if cfg.Notion.APIKey != "" {
			ticketer = notion.NewClient(cfg.Notion, logger)
		}
		var designer pipeline.Designer
		adapter := figma.NewAdapter(cfg.Figma, cfg.Paths, logger)
		if adapter.Mode() != figma.ModeUnavailable {
			designer = adapter
		}

		runID := pipeline.NewRunID()
		artifacts, err := pipeline.NewArtifactStore(cfg.Paths.Output, runID)
		if err != nil {
			return err
		}
		logger.Info("pipeline starting",
			zap.String("run", runID),
			zap.String("session", session.ID),
			zap.String("artifacts", artifacts.Dir()))

		runner := pipeline.NewRunner(client, retriever, ticketer, designer, logger)
		result, err := runner.Run(cmd.Context(), session, artifacts, pipeline.Options{
			SkipDesign:  skipDesign,
			SkipTickets: skipTickets,
			Verbose:     verbose,
			MaxScreens:  maxScreens,
		})
		if err != nil {
			return fmt.Errorf("%w (partial artifacts in %s)", err, result.ArtifactDir)
		}
		return nil
	},
}

func init() {
	pipelineCmd.Flags().BoolVar(&skipDesign, "skip-design", false, "Skip design generation")
	pipelineCmd.Flags().BoolVar(&skipTickets, "skip-tickets", false, "Skip ticket creation")
	pipelineCmd.Flags().IntVar(&maxScreens, "max-screens", 0, "Max screens to generate (0 = all)")
}
