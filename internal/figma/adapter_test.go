package figma

import (
	"context"
	"testing"

	"designflow/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		token, email, password bool
		want                   Mode
	}{
		{false, false, false, ModeUnavailable},
		{false, false, true, ModeUnavailable},
		{false, true, false, ModeUnavailable},
		{false, true, true, ModeBrowser},
		{true, false, false, ModeAPI},
		{true, false, true, ModeAPI},
		{true, true, false, ModeAPI},
		{true, true, true, ModeAPI},
	}
	for _, tt := range tests {
		got := SelectMode(tt.token, tt.email, tt.password)
		assert.Equalf(t, tt.want, got, "token=%v email=%v password=%v", tt.token, tt.email, tt.password)
	}
}

func TestAdapter_UnavailableReadOps(t *testing.T) {
	a := NewAdapter(config.FigmaConfig{}, config.PathsConfig{}, nil)
	require.Equal(t, ModeUnavailable, a.Mode())
	assert.Nil(t, a.api)

	ctx := context.Background()

	_, err := a.GetFile(ctx, "abc", 0)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "GetFile")

	_, err = a.GetComponents(ctx, "abc")
	assert.ErrorAs(t, err, &cfgErr)

	_, _, err = a.GetDesignTokens(ctx, "abc")
	assert.ErrorAs(t, err, &cfgErr)

	err = a.PostComment(ctx, "abc", "hi")
	assert.ErrorAs(t, err, &cfgErr)
}

func TestAdapter_BrowserModeHasNoAPI(t *testing.T) {
	a := NewAdapter(config.FigmaConfig{Email: "e@example.com", Password: "p"}, config.PathsConfig{}, nil)
	require.Equal(t, ModeBrowser, a.Mode())
	assert.True(t, a.HasBrowser())

	_, err := a.GetFile(context.Background(), "abc", 0)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestAdapter_CreateDesignRequiresBrowserCredentials(t *testing.T) {
	a := NewAdapter(config.FigmaConfig{APIToken: "tok"}, config.PathsConfig{}, nil)
	require.Equal(t, ModeAPI, a.Mode())
	require.False(t, a.HasBrowser())

	_, err := a.CreateDesign(context.Background(), []Prompt{{ScreenID: "a", Text: "t"}}, 0)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "FIGMA_EMAIL")
}

func TestAdapter_CreateDesignUsesGeneratorSeam(t *testing.T) {
	a := NewAdapter(config.FigmaConfig{Email: "e@example.com", Password: "p"}, config.PathsConfig{}, nil)
	fake := &fakeGenerator{url: "https://www.figma.com/make/xyz"}
	a.newGenerator = func() Generator { return fake }

	result, err := a.CreateDesign(context.Background(), []Prompt{
		{ScreenID: "a", ScreenName: "A", Text: "t", IsFirstScreen: true},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://www.figma.com/make/xyz", result.URL)
	assert.True(t, fake.closed)
}

func TestAdapter_AttachPipelineCommentSkipsWithoutToken(t *testing.T) {
	a := NewAdapter(config.FigmaConfig{Email: "e@example.com", Password: "p"}, config.PathsConfig{}, nil)

	// The one soft operation: no token means log and carry on.
	err := a.AttachPipelineComment(context.Background(), "file123", "PRD Title", "https://notion.so/epic")
	assert.NoError(t, err)
}

func TestExtractFileKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.figma.com/file/aBc123XYZ/My-Design", "aBc123XYZ"},
		{"https://www.figma.com/design/K9xQ2/Portal?node-id=1", "K9xQ2"},
		{"https://www.figma.com/make/new", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractFileKey(tt.url), tt.url)
	}
}
