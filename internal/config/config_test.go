package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "output", cfg.Paths.Output)
	assert.Equal(t, ".figma-state", cfg.Paths.BrowserState)
	assert.Equal(t, "Design System Library", cfg.Figma.DesignLibrary)
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designflow.yaml")

	cfg := DefaultConfig()
	cfg.AI.Model = "custom-model"
	cfg.Notion.EpicDB = "db-epic"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", loaded.AI.Model)
	assert.Equal(t, "db-epic", loaded.Notion.EpicDB)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("AI key and model", func(t *testing.T) {
		t.Setenv("AI_API_KEY", "sk-test")
		t.Setenv("AI_MODEL", "other-model")
		t.Setenv("GEMINI_API_KEY", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-test", cfg.AI.APIKey)
		assert.Equal(t, "other-model", cfg.AI.Model)
	})

	t.Run("GEMINI_API_KEY switches provider", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini", cfg.AI.Provider)
		assert.Equal(t, "gm-key", cfg.AI.APIKey)
	})

	t.Run("figma credentials", func(t *testing.T) {
		t.Setenv("FIGMA_API_TOKEN", "figd_xxx")
		t.Setenv("FIGMA_EMAIL", "designer@example.com")
		t.Setenv("FIGMA_PASSWORD", "hunter2")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "figd_xxx", cfg.Figma.APIToken)
		assert.Equal(t, "designer@example.com", cfg.Figma.Email)
		assert.Equal(t, "hunter2", cfg.Figma.Password)
	})

	t.Run("notion databases", func(t *testing.T) {
		t.Setenv("NOTION_API_KEY", "secret_n")
		t.Setenv("NOTION_DB_EPIC", "epic-id")
		t.Setenv("NOTION_DB_TASK", "task-id")
		t.Setenv("NOTION_DB_FEEDBACK", "fb-id")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "secret_n", cfg.Notion.APIKey)
		assert.Equal(t, "epic-id", cfg.Notion.EpicDB)
		assert.Equal(t, "task-id", cfg.Notion.TaskDB)
		assert.Equal(t, "fb-id", cfg.Notion.FeedbackDB)
	})

	t.Run("output dir", func(t *testing.T) {
		t.Setenv("DESIGNFLOW_OUTPUT_DIR", "/tmp/out")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/out", cfg.Paths.Output)
	})
}

func TestGetAITimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetAITimeout())

	cfg.AI.Timeout = "30s"
	assert.Equal(t, 30*time.Second, cfg.GetAITimeout())

	cfg.AI.Timeout = "garbage"
	assert.Equal(t, 120*time.Second, cfg.GetAITimeout())
}
