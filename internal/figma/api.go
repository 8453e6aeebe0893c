// Package figma integrates with the design tool through two surfaces: a
// token-authenticated REST transport for read, export, and comment
// operations, and a browser-driven session for the generation flow, which
// has no write API.
package figma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const apiBaseURL = "https://api.figma.com/v1"

// API is a lightweight client for the design tool's REST API. Requests are
// authenticated with a personal access token.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPI creates an API client. The token must be non-empty.
func NewAPI(token string) (*API, error) {
	if token == "" {
		return nil, &ConfigError{Missing: "FIGMA_API_TOKEN"}
	}
	return &API{
		baseURL:    apiBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *API) request(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Figma-Token", a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// GetFile fetches the file tree. Depth 0 fetches the full tree, which can
// be large.
func (a *API) GetFile(ctx context.Context, fileKey string, depth int) (json.RawMessage, error) {
	path := fmt.Sprintf("/files/%s", fileKey)
	if depth > 0 {
		path += fmt.Sprintf("?depth=%d", depth)
	}
	var out json.RawMessage
	if err := a.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNodes fetches specific nodes by ID.
func (a *API) GetNodes(ctx context.Context, fileKey string, nodeIDs []string) (json.RawMessage, error) {
	path := fmt.Sprintf("/files/%s/nodes?ids=%s", fileKey, joinIDs(nodeIDs))
	var out json.RawMessage
	if err := a.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Component is one published component in a file.
type Component struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	NodeID      string `json:"node_id"`
}

// GetComponents fetches the file's published components.
func (a *API) GetComponents(ctx context.Context, fileKey string) ([]Component, error) {
	var out struct {
		Meta struct {
			Components []Component `json:"components"`
		} `json:"meta"`
	}
	if err := a.request(ctx, http.MethodGet, fmt.Sprintf("/files/%s/components", fileKey), nil, &out); err != nil {
		return nil, err
	}
	return out.Meta.Components, nil
}

// Style is one published style (color, text, effect) in a file.
type Style struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	StyleType string `json:"style_type"`
	NodeID    string `json:"node_id"`
}

// GetStyles fetches the file's published styles.
func (a *API) GetStyles(ctx context.Context, fileKey string) ([]Style, error) {
	var out struct {
		Meta struct {
			Styles []Style `json:"styles"`
		} `json:"meta"`
	}
	if err := a.request(ctx, http.MethodGet, fmt.Sprintf("/files/%s/styles", fileKey), nil, &out); err != nil {
		return nil, err
	}
	return out.Meta.Styles, nil
}

// GetVariables fetches local variables (design tokens). Requires
// file-level token scope.
func (a *API) GetVariables(ctx context.Context, fileKey string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.request(ctx, http.MethodGet, fmt.Sprintf("/files/%s/variables/local", fileKey), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportImages renders nodes to images and returns a node-id to image-URL
// map. Format is png, svg, or pdf.
func (a *API) ExportImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale int) (map[string]string, error) {
	if format == "" {
		format = "png"
	}
	if scale <= 0 {
		scale = 2
	}
	path := fmt.Sprintf("/images/%s?ids=%s&format=%s&scale=%d", fileKey, joinIDs(nodeIDs), format, scale)
	var out struct {
		Images map[string]string `json:"images"`
	}
	if err := a.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}

// Comment is one comment on a file.
type Comment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	User    struct {
		Handle string `json:"handle"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// GetComments lists comments on a file.
func (a *API) GetComments(ctx context.Context, fileKey string) ([]Comment, error) {
	var out struct {
		Comments []Comment `json:"comments"`
	}
	if err := a.request(ctx, http.MethodGet, fmt.Sprintf("/files/%s/comments", fileKey), nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

// PostComment posts a comment on a file.
func (a *API) PostComment(ctx context.Context, fileKey, message string) error {
	body := map[string]any{"message": message}
	return a.request(ctx, http.MethodPost, fmt.Sprintf("/files/%s/comments", fileKey), body, nil)
}

// User identifies the token owner.
type User struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Email  string `json:"email"`
}

// ValidateToken checks the configured token by fetching the current user.
func (a *API) ValidateToken(ctx context.Context) (*User, error) {
	var user User
	if err := a.request(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

var fileKeyRe = regexp.MustCompile(`figma\.com/(?:file|design)/([a-zA-Z0-9]+)`)

// ExtractFileKey pulls a file key out of a design-tool URL. Returns the
// empty string when the URL does not contain one.
func ExtractFileKey(url string) string {
	m := fileKeyRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

func joinIDs(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return strings.Join(escaped, ",")
}
