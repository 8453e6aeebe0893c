package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"designflow/internal/config"

	"go.uber.org/zap"
)

// Mode is the adapter's operating mode, computed once at construction.
type Mode string

const (
	// ModeAPI: structured API token present; read/export/comment work.
	ModeAPI Mode = "api"
	// ModeBrowser: no token, but browser credentials allow generation.
	ModeBrowser Mode = "browser"
	// ModeUnavailable: no credentials at all.
	ModeUnavailable Mode = "unavailable"
)

// SelectMode picks the operating mode from the configured credentials.
// Token wins over browser credentials; generation remains possible in api
// mode when credentials are also present.
func SelectMode(hasToken, hasEmail, hasPassword bool) Mode {
	if hasToken {
		return ModeAPI
	}
	if hasEmail && hasPassword {
		return ModeBrowser
	}
	return ModeUnavailable
}

// Adapter unifies the two design-tool surfaces. Read, export, and comment
// operations go through the structured API; creating a design goes through
// the browser-driven session, because the API is read-only for this tool.
type Adapter struct {
	cfg  config.FigmaConfig
	api  *API
	mode Mode
	log  *zap.Logger

	stateDir  string
	outputDir string

	// newGenerator builds the browser session for CreateDesign. Swapped
	// in tests.
	newGenerator func() Generator
}

// NewAdapter constructs an adapter. No network or browser action happens
// here; only mode selection and, when a token is present, transport setup.
func NewAdapter(cfg config.FigmaConfig, paths config.PathsConfig, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Adapter{
		cfg:       cfg,
		mode:      SelectMode(cfg.APIToken != "", cfg.Email != "", cfg.Password != ""),
		log:       logger,
		stateDir:  paths.BrowserState,
		outputDir: paths.Output,
	}
	if a.mode == ModeAPI {
		api, _ := NewAPI(cfg.APIToken)
		a.api = api
	}
	a.newGenerator = func() Generator {
		return NewSession(SessionConfig{
			Email:     cfg.Email,
			Password:  cfg.Password,
			Headless:  cfg.Headless,
			StateDir:  paths.BrowserState,
			OutputDir: paths.Output,
		}, logger)
	}

	switch a.mode {
	case ModeAPI:
		logger.Info("design tool API mode active")
	case ModeBrowser:
		logger.Info("design tool browser-only mode (no API token)")
	default:
		logger.Info("no design tool credentials configured")
	}
	return a
}

// Mode returns the operating mode.
func (a *Adapter) Mode() Mode {
	return a.mode
}

// HasBrowser reports whether the generation flow can run.
func (a *Adapter) HasBrowser() bool {
	return a.cfg.Email != "" && a.cfg.Password != ""
}

func (a *Adapter) requireAPI(op string) (*API, error) {
	if a.api == nil {
		return nil, &ConfigError{Missing: fmt.Sprintf("FIGMA_API_TOKEN (required by %s)", op)}
	}
	return a.api, nil
}

// GetFile fetches a file tree via the structured API.
func (a *Adapter) GetFile(ctx context.Context, fileKey string, depth int) (json.RawMessage, error) {
	api, err := a.requireAPI("GetFile")
	if err != nil {
		return nil, err
	}
	return api.GetFile(ctx, fileKey, depth)
}

// GetNodes fetches specific nodes via the structured API.
func (a *Adapter) GetNodes(ctx context.Context, fileKey string, nodeIDs []string) (json.RawMessage, error) {
	api, err := a.requireAPI("GetNodes")
	if err != nil {
		return nil, err
	}
	return api.GetNodes(ctx, fileKey, nodeIDs)
}

// GetComponents fetches published components via the structured API.
func (a *Adapter) GetComponents(ctx context.Context, fileKey string) ([]Component, error) {
	api, err := a.requireAPI("GetComponents")
	if err != nil {
		return nil, err
	}
	return api.GetComponents(ctx, fileKey)
}

// GetDesignTokens fetches styles plus local variables. Variables require
// extra token scope, so their failure degrades to styles-only.
func (a *Adapter) GetDesignTokens(ctx context.Context, fileKey string) ([]Style, json.RawMessage, error) {
	api, err := a.requireAPI("GetDesignTokens")
	if err != nil {
		return nil, nil, err
	}
	styles, err := api.GetStyles(ctx, fileKey)
	if err != nil {
		return nil, nil, err
	}
	variables, err := api.GetVariables(ctx, fileKey)
	if err != nil {
		a.log.Debug("variables unavailable", zap.Error(err))
		variables = nil
	}
	return styles, variables, nil
}

// ExportImages renders nodes to images via the structured API.
func (a *Adapter) ExportImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale int) (map[string]string, error) {
	api, err := a.requireAPI("ExportImages")
	if err != nil {
		return nil, err
	}
	return api.ExportImages(ctx, fileKey, nodeIDs, format, scale)
}

// GetComments lists file comments via the structured API.
func (a *Adapter) GetComments(ctx context.Context, fileKey string) ([]Comment, error) {
	api, err := a.requireAPI("GetComments")
	if err != nil {
		return nil, err
	}
	return api.GetComments(ctx, fileKey)
}

// PostComment posts a file comment via the structured API.
func (a *Adapter) PostComment(ctx context.Context, fileKey, message string) error {
	api, err := a.requireAPI("PostComment")
	if err != nil {
		return err
	}
	return api.PostComment(ctx, fileKey, message)
}

// ValidateToken checks the configured API token.
func (a *Adapter) ValidateToken(ctx context.Context) (*User, error) {
	api, err := a.requireAPI("ValidateToken")
	if err != nil {
		return nil, err
	}
	return api.ValidateToken(ctx)
}

// CreateDesign runs the browser generation flow over the given prompts.
// Browser-only: the structured API cannot create designs. Fails before
// launching anything when browser credentials are absent.
func (a *Adapter) CreateDesign(ctx context.Context, prompts []Prompt, maxScreens int) (*FlowResult, error) {
	if !a.HasBrowser() {
		return nil, &ConfigError{Missing: "FIGMA_EMAIL and FIGMA_PASSWORD (required to create designs)"}
	}

	a.log.Info("creating design via browser generation", zap.Int("prompts", len(prompts)))
	return RunGenerationFlow(ctx, a.newGenerator(), prompts, a.cfg.DesignLibrary, maxScreens, a.log)
}

// AttachPipelineComment posts a run summary comment on a design file. A
// comment is cosmetic, so a missing API transport logs and returns nil:
// this is the one silent-skip operation on the adapter.
func (a *Adapter) AttachPipelineComment(ctx context.Context, fileKey, prdTitle, epicURL string) error {
	if a.api == nil {
		a.log.Info("skipping design comment (no API token)")
		return nil
	}

	message := fmt.Sprintf("Automated design pipeline\nPRD: %s\n", prdTitle)
	if epicURL != "" {
		message += fmt.Sprintf("Epic: %s\n", epicURL)
	}
	message += fmt.Sprintf("Generated at %s", time.Now().UTC().Format(time.RFC3339))

	if err := a.api.PostComment(ctx, fileKey, message); err != nil {
		return err
	}
	a.log.Info("pipeline comment posted", zap.String("file", fileKey))
	return nil
}
