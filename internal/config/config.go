// Package config loads designflow configuration from a YAML file with
// environment variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all designflow configuration.
type Config struct {
	// LLM provider for the pipeline stages
	AI AIConfig `yaml:"ai"`

	// Notion ticketing integration
	Notion NotionConfig `yaml:"notion"`

	// Figma design tool integration
	Figma FigmaConfig `yaml:"figma"`

	// Local paths
	Paths PathsConfig `yaml:"paths"`
}

// AIConfig configures the text-generation client.
type AIConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// NotionConfig configures the ticketing client.
type NotionConfig struct {
	APIKey     string `yaml:"api_key"`
	FeedbackDB string `yaml:"feedback_db"`
	EpicDB     string `yaml:"epic_db"`
	TaskDB     string `yaml:"task_db"`
}

// FigmaConfig configures both Figma integration surfaces.
type FigmaConfig struct {
	// Personal access token for the structured REST API (read/export/comment).
	APIToken string `yaml:"api_token"`

	// Browser login credentials for the generation flow (create has no API).
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// Design library to select before generating.
	DesignLibrary string `yaml:"design_library"`

	// Run the generation browser headless.
	Headless bool `yaml:"headless"`
}

// PathsConfig configures local storage locations.
type PathsConfig struct {
	KnowledgeBase string `yaml:"knowledge_base"`
	Sessions      string `yaml:"sessions"`
	Output        string `yaml:"output"`
	BrowserState  string `yaml:"browser_state"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "openai",
			Model:    "glm-4.7",
			BaseURL:  "https://api.z.ai/api/coding/paas/v4",
			Timeout:  "120s",
		},
		Figma: FigmaConfig{
			DesignLibrary: "Design System Library",
		},
		Paths: PathsConfig{
			KnowledgeBase: "docs/knowledge-base",
			Sessions:      "sessions",
			Output:        "output",
			BrowserState:  ".figma-state",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults;
// environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("AI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if url := os.Getenv("AI_BASE_URL"); url != "" {
		c.AI.BaseURL = url
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
		c.AI.Provider = "gemini"
	}

	if key := os.Getenv("NOTION_API_KEY"); key != "" {
		c.Notion.APIKey = key
	}
	if id := os.Getenv("NOTION_DB_FEEDBACK"); id != "" {
		c.Notion.FeedbackDB = id
	}
	if id := os.Getenv("NOTION_DB_EPIC"); id != "" {
		c.Notion.EpicDB = id
	}
	if id := os.Getenv("NOTION_DB_TASK"); id != "" {
		c.Notion.TaskDB = id
	}

	if token := os.Getenv("FIGMA_API_TOKEN"); token != "" {
		c.Figma.APIToken = token
	}
	if email := os.Getenv("FIGMA_EMAIL"); email != "" {
		c.Figma.Email = email
	}
	if pass := os.Getenv("FIGMA_PASSWORD"); pass != "" {
		c.Figma.Password = pass
	}
	if lib := os.Getenv("FIGMA_DESIGN_LIBRARY"); lib != "" {
		c.Figma.DesignLibrary = lib
	}

	if dir := os.Getenv("DESIGNFLOW_OUTPUT_DIR"); dir != "" {
		c.Paths.Output = dir
	}
	if dir := os.Getenv("DESIGNFLOW_KNOWLEDGE_BASE"); dir != "" {
		c.Paths.KnowledgeBase = dir
	}
}

// GetAITimeout returns the LLM timeout as a duration.
func (c *Config) GetAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}
