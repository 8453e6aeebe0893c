// Package notion creates pipeline tickets (feedback, epic, tasks) in
// Notion databases and links generated designs back to them.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"designflow/internal/config"
	"designflow/internal/stages"

	"go.uber.org/zap"
)

const (
	apiBaseURL = "https://api.notion.com/v1"
	apiVersion = "2022-06-28"
)

// ConfigError reports missing ticketing configuration.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("notion: missing configuration: %s", strings.Join(e.Missing, ", "))
}

// APIError reports a non-2xx Notion response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: API returned %d: %s", e.Status, e.Body)
}

// Client talks to the Notion REST API.
type Client struct {
	baseURL    string
	cfg        config.NotionConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Notion client. Construction is cheap; configuration
// is validated when an operation needs it.
func NewClient(cfg config.NotionConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    apiBaseURL,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger,
	}
}

// PageURL converts a page ID into a clickable URL.
func PageURL(pageID string) string {
	return "https://notion.so/" + strings.ReplaceAll(pageID, "-", "")
}

// validateConfig checks that the key and all database IDs are present.
func (c *Client) validateConfig() error {
	var missing []string
	if c.cfg.APIKey == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if c.cfg.FeedbackDB == "" {
		missing = append(missing, "NOTION_DB_FEEDBACK")
	}
	if c.cfg.EpicDB == "" {
		missing = append(missing, "NOTION_DB_EPIC")
	}
	if c.cfg.TaskDB == "" {
		missing = append(missing, "NOTION_DB_TASK")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// databaseAccessible probes a database before writing to it, so schema and
// sharing problems surface as warnings instead of opaque create failures.
func (c *Client) databaseAccessible(ctx context.Context, dbID, label string) bool {
	err := c.request(ctx, http.MethodGet, "/databases/"+dbID, nil, nil)
	if err == nil {
		return true
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == 404:
		c.log.Warn("notion database not found, check DB ID and integration access",
			zap.String("db", label), zap.String("id", dbID))
	case errors.As(err, &apiErr) && apiErr.Status == 403:
		c.log.Warn("no access to notion database, share it with the integration",
			zap.String("db", label), zap.String("id", dbID))
	default:
		c.log.Warn("cannot access notion database", zap.String("db", label), zap.Error(err))
	}
	return false
}

type createPageResponse struct {
	ID string `json:"id"`
}

// CreateFeedback records the raw detected intent in the feedback database.
// An inaccessible database is a soft skip that returns an empty ID.
func (c *Client) CreateFeedback(ctx context.Context, intent *stages.Intent, conversationSummary string) (string, error) {
	if err := c.validateConfig(); err != nil {
		return "", err
	}
	if !c.databaseAccessible(ctx, c.cfg.FeedbackDB, "Feedback") {
		c.log.Warn("skipping feedback creation, database not accessible")
		return "", nil
	}

	var md strings.Builder
	fmt.Fprintf(&md, "## Feedback Summary\n%s\n\n## Conversation Summary\n%s\n\n## Affected Areas\n", intent.Details, conversationSummary)
	for _, a := range intent.AffectedAreas {
		md.WriteString("- " + a + "\n")
	}

	body := map[string]any{
		"parent": map[string]any{"database_id": c.cfg.FeedbackDB},
		"properties": map[string]any{
			"Request name": titleProperty(fmt.Sprintf("[%s] %s", strings.ToUpper(intent.Type), intent.Summary)),
		},
		"children": markdownToBlocks(md.String()),
	}

	var resp createPageResponse
	if err := c.request(ctx, http.MethodPost, "/pages", body, &resp); err != nil {
		return "", fmt.Errorf("create feedback: %w", err)
	}
	c.log.Info("feedback created", zap.String("url", PageURL(resp.ID)))
	return resp.ID, nil
}

// CreateEpic creates the epic page from the PRD and returns its ID.
func (c *Client) CreateEpic(ctx context.Context, prd *stages.PRD, intent *stages.Intent) (string, error) {
	if err := c.validateConfig(); err != nil {
		return "", err
	}
	if !c.databaseAccessible(ctx, c.cfg.EpicDB, "Epic") {
		return "", fmt.Errorf("epic database not accessible: %s", c.cfg.EpicDB)
	}

	domain := "Epic"
	if len(intent.AffectedAreas) > 0 {
		domain = intent.AffectedAreas[0]
	}

	body := map[string]any{
		"parent": map[string]any{"database_id": c.cfg.EpicDB},
		"properties": map[string]any{
			"Epic":           titleProperty(fmt.Sprintf("[%s] %s", strings.ToUpper(intent.Type), prd.Title)),
			"Status":         map[string]any{"status": map[string]any{"name": "Backlog"}},
			"Feature/Domain": map[string]any{"multi_select": []map[string]any{{"name": domain}}},
		},
		"children": markdownToBlocks(epicDescription(prd, intent)),
	}

	var resp createPageResponse
	if err := c.request(ctx, http.MethodPost, "/pages", body, &resp); err != nil {
		return "", fmt.Errorf("create epic: %w", err)
	}
	c.log.Info("epic created", zap.String("url", PageURL(resp.ID)))
	return resp.ID, nil
}

func epicDescription(prd *stages.PRD, intent *stages.Intent) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## Problem Statement\n%s\n\n## Proposed Solution\n%s\n\n## User Stories\n", prd.ProblemStatement, prd.ProposedSolution)
	for _, s := range prd.UserStories {
		fmt.Fprintf(&md, "- As a **%s**, I want **%s**, so that **%s**\n", s.AsA, s.IWant, s.SoThat)
	}
	md.WriteString("\n## Acceptance Criteria\n")
	for _, a := range prd.AcceptanceCriteria {
		md.WriteString("- " + a + "\n")
	}
	md.WriteString("\n## Out of Scope\n")
	for _, o := range prd.OutOfScope {
		md.WriteString("- " + o + "\n")
	}
	fmt.Fprintf(&md, "\n## Affected Roles\n%s\n\n## Related Features\n%s\n\n## Metadata\n- Priority: %s\n- Complexity: %s\n- Intent Type: %s\n",
		strings.Join(prd.AffectedRoles, ", "), strings.Join(prd.RelatedFeatures, ", "),
		prd.Priority, prd.EstimatedComplexity, intent.Type)
	return md.String()
}

// CreateTasks creates one task per screen plus one per screen's
// interaction rules, each linked to the epic. An inaccessible task
// database is a soft skip that returns no IDs.
func (c *Client) CreateTasks(ctx context.Context, prd *stages.PRD, spec *stages.UISpec, epicID string) ([]string, error) {
	if err := c.validateConfig(); err != nil {
		return nil, err
	}
	if !c.databaseAccessible(ctx, c.cfg.TaskDB, "Task") {
		c.log.Warn("skipping task creation, database not accessible")
		return nil, nil
	}

	var taskIDs []string
	for _, screen := range spec.ScreenList {
		id, err := c.createTask(ctx,
			fmt.Sprintf("[UI] %s - %s", screen.Name, prd.Title),
			screenDescription(prd, screen), epicID)
		if err != nil {
			return taskIDs, fmt.Errorf("create task for %q: %w", screen.ID, err)
		}
		taskIDs = append(taskIDs, id)
		c.log.Info("task created", zap.String("screen", screen.Name), zap.String("url", PageURL(id)))
	}

	// One consolidated task per screen's interaction rules.
	byScreen := make(map[string][]stages.InteractionRule)
	var order []string
	for _, r := range spec.InteractionRules {
		if _, ok := byScreen[r.Screen]; !ok {
			order = append(order, r.Screen)
		}
		byScreen[r.Screen] = append(byScreen[r.Screen], r)
	}
	for _, screenID := range order {
		var md strings.Builder
		fmt.Fprintf(&md, "## Interaction Rules: %s\n\n", screenID)
		for _, r := range byScreen[screenID] {
			fmt.Fprintf(&md, "- %s: %s", r.Component, r.Behavior)
			if r.Validation != "" {
				fmt.Fprintf(&md, " (validation: %s)", r.Validation)
			}
			md.WriteString("\n")
		}

		id, err := c.createTask(ctx,
			fmt.Sprintf("[Interaction] %s Rules - %s", screenID, prd.Title),
			md.String(), epicID)
		if err != nil {
			return taskIDs, fmt.Errorf("create interaction task for %q: %w", screenID, err)
		}
		taskIDs = append(taskIDs, id)
	}

	c.log.Info("tasks created", zap.Int("count", len(taskIDs)))
	return taskIDs, nil
}

func (c *Client) createTask(ctx context.Context, title, description, epicID string) (string, error) {
	properties := map[string]any{
		"Task name": titleProperty(title),
		"Status":    map[string]any{"status": map[string]any{"name": "Not started"}},
	}
	if epicID != "" {
		properties["Epic"] = map[string]any{"relation": []map[string]any{{"id": epicID}}}
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": c.cfg.TaskDB},
		"properties": properties,
		"children":   markdownToBlocks(description),
	}

	var resp createPageResponse
	if err := c.request(ctx, http.MethodPost, "/pages", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func screenDescription(prd *stages.PRD, screen stages.Screen) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## %s\n%s\n\n## Layout\n%s\n\n## Key Components\n", screen.Name, screen.Description, screen.Layout)
	for _, comp := range screen.Components {
		md.WriteString("- " + comp.Name + "\n")
	}
	md.WriteString("\n## User Interactions\n")
	wrote := false
	for _, comp := range screen.Components {
		for _, action := range comp.Interactions {
			if action == "" {
				continue
			}
			fmt.Fprintf(&md, "- %s: %s\n", comp.Name, action)
			wrote = true
		}
	}
	if !wrote {
		md.WriteString("No specific interactions defined.\n")
	}
	data := strings.Join(screen.DataEntities, ", ")
	if data == "" {
		data = "N/A"
	}
	fmt.Fprintf(&md, "\n## Data Used\n%s\n\n## Linked Epic\n%s\n", data, prd.Title)
	return md.String()
}

// UpdateTicketWithDesign appends the generated design link to a ticket
// page. An empty page ID is a soft skip.
func (c *Client) UpdateTicketWithDesign(ctx context.Context, pageID, designURL, wireframePath string) error {
	if pageID == "" {
		c.log.Warn("no page ID, skipping design link attachment")
		return nil
	}

	children := []map[string]any{
		heading2Block("Design"),
		{
			"type": "bookmark",
			"bookmark": map[string]any{
				"url":     designURL,
				"caption": richText("Generated mockup"),
			},
		},
	}
	if wireframePath != "" {
		children = append(children, paragraphBlock("Local wireframe: "+wireframePath))
	}

	body := map[string]any{"children": children}
	if err := c.request(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", body, nil); err != nil {
		return fmt.Errorf("attach design link: %w", err)
	}
	c.log.Info("design link added", zap.String("url", PageURL(pageID)))
	return nil
}
