package figma

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Generator is the browser-session surface the generation flow drives.
// *Session implements it; tests substitute a fake.
type Generator interface {
	Init(ctx context.Context) error
	SelectLibrary(name string) error
	SubmitInitialPrompt(ctx context.Context, text string) (string, error)
	SubmitContinuationPrompt(ctx context.Context, text string) error
	SwitchRoute(route string) error
	Screenshot(name string) (string, error)
	Close() error
}

// FlowResult is the outcome of one generation flow.
type FlowResult struct {
	URL              string   `json:"url"`
	ScreensGenerated []string `json:"screensGenerated"`
	ScreenshotPaths  []string `json:"screenshotPaths"`
}

// RunGenerationFlow drives the full generation sequence: initialize,
// select the library, submit the first prompt, then each continuation
// bounded by maxScreens, screenshotting after every submit. The session
// is closed on every exit path. On error the partial result is returned
// alongside it so the caller can fall back to manual instructions.
func RunGenerationFlow(ctx context.Context, gen Generator, prompts []Prompt, library string, maxScreens int, logger *zap.Logger) (*FlowResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &FlowResult{}
	if len(prompts) == 0 {
		return result, fmt.Errorf("no generation prompts")
	}
	if maxScreens <= 0 || maxScreens > len(prompts) {
		maxScreens = len(prompts)
	}

	defer func() {
		if err := gen.Close(); err != nil {
			logger.Warn("session close failed", zap.Error(err))
		}
	}()

	if err := gen.Init(ctx); err != nil {
		return result, fmt.Errorf("init session: %w", err)
	}
	if err := gen.SelectLibrary(library); err != nil {
		return result, fmt.Errorf("select library: %w", err)
	}

	url, err := gen.SubmitInitialPrompt(ctx, prompts[0].Text)
	if err != nil {
		return result, fmt.Errorf("initial prompt: %w", err)
	}
	result.URL = url
	result.ScreensGenerated = append(result.ScreensGenerated, prompts[0].ScreenName)

	path, err := gen.Screenshot(screenshotName(1, prompts[0].ScreenID))
	if err != nil {
		logger.Warn("screenshot failed", zap.String("screen", prompts[0].ScreenID), zap.Error(err))
	} else {
		result.ScreenshotPaths = append(result.ScreenshotPaths, path)
	}

	for i := 1; i < maxScreens; i++ {
		p := prompts[i]
		if err := gen.SubmitContinuationPrompt(ctx, p.Text); err != nil {
			return result, fmt.Errorf("continuation prompt %q: %w", p.ScreenID, err)
		}
		result.ScreensGenerated = append(result.ScreensGenerated, p.ScreenName)

		if err := gen.SwitchRoute(p.ScreenID); err != nil {
			logger.Warn("route switch failed", zap.String("route", p.ScreenID), zap.Error(err))
		}
		path, err := gen.Screenshot(screenshotName(i+1, p.ScreenID))
		if err != nil {
			logger.Warn("screenshot failed", zap.String("screen", p.ScreenID), zap.Error(err))
		} else {
			result.ScreenshotPaths = append(result.ScreenshotPaths, path)
		}
	}

	return result, nil
}

func screenshotName(seq int, screenID string) string {
	return fmt.Sprintf("design-%02d-%s.png", seq, screenID)
}
