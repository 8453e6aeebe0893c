package figma

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records the flow's calls in order.
type fakeGenerator struct {
	url string

	initErr         error
	continuationErr map[int]error // keyed by continuation index (0 = first continuation)
	screenshotErr   bool

	calls         []string
	continuations int
	closed        bool
	closeCount    int
}

func (f *fakeGenerator) Init(ctx context.Context) error {
	f.calls = append(f.calls, "init")
	return f.initErr
}

func (f *fakeGenerator) SelectLibrary(name string) error {
	f.calls = append(f.calls, "library:"+name)
	return nil
}

func (f *fakeGenerator) SubmitInitialPrompt(ctx context.Context, text string) (string, error) {
	f.calls = append(f.calls, "initial")
	return f.url, nil
}

func (f *fakeGenerator) SubmitContinuationPrompt(ctx context.Context, text string) error {
	err := f.continuationErr[f.continuations]
	f.continuations++
	f.calls = append(f.calls, fmt.Sprintf("continuation-%d", f.continuations))
	return err
}

func (f *fakeGenerator) SwitchRoute(route string) error {
	f.calls = append(f.calls, "route:"+route)
	return nil
}

func (f *fakeGenerator) Screenshot(name string) (string, error) {
	f.calls = append(f.calls, "screenshot:"+name)
	if f.screenshotErr {
		return "", fmt.Errorf("capture failed")
	}
	return "output/" + name, nil
}

func (f *fakeGenerator) Close() error {
	f.closed = true
	f.closeCount++
	return nil
}

func threePrompts() []Prompt {
	return []Prompt{
		{ScreenID: "dashboard", ScreenName: "Dashboard", Text: "p1", IsFirstScreen: true},
		{ScreenID: "detail", ScreenName: "Detail", Text: "p2"},
		{ScreenID: "settings", ScreenName: "Settings", Text: "p3"},
	}
}

func TestRunGenerationFlow(t *testing.T) {
	fake := &fakeGenerator{url: "https://www.figma.com/make/abc"}

	result, err := RunGenerationFlow(context.Background(), fake, threePrompts(), "Acme", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://www.figma.com/make/abc", result.URL)
	assert.Equal(t, []string{"Dashboard", "Detail", "Settings"}, result.ScreensGenerated)
	assert.Equal(t, []string{
		"output/design-01-dashboard.png",
		"output/design-02-detail.png",
		"output/design-03-settings.png",
	}, result.ScreenshotPaths)

	// One initial submit, two continuations, each screenshot after its
	// submit and before the next one.
	assert.Equal(t, []string{
		"init",
		"library:Acme",
		"initial",
		"screenshot:design-01-dashboard.png",
		"continuation-1",
		"route:detail",
		"screenshot:design-02-detail.png",
		"continuation-2",
		"route:settings",
		"screenshot:design-03-settings.png",
	}, fake.calls)
	assert.True(t, fake.closed)
}

func TestRunGenerationFlow_MaxScreensCapsContinuations(t *testing.T) {
	fake := &fakeGenerator{url: "u"}

	result, err := RunGenerationFlow(context.Background(), fake, threePrompts(), "", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dashboard", "Detail"}, result.ScreensGenerated)
	assert.Equal(t, 1, fake.continuations)
}

func TestRunGenerationFlow_PartialResultOnFailure(t *testing.T) {
	fake := &fakeGenerator{
		url:             "u",
		continuationErr: map[int]error{1: fmt.Errorf("prompt box not found")},
	}

	result, err := RunGenerationFlow(context.Background(), fake, threePrompts(), "", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `continuation prompt "settings"`)

	// Work done before the failure survives in the result.
	assert.Equal(t, "u", result.URL)
	assert.Equal(t, []string{"Dashboard", "Detail"}, result.ScreensGenerated)
	assert.True(t, fake.closed, "session must be closed on the error path")
}

func TestRunGenerationFlow_InitFailureStillCloses(t *testing.T) {
	fake := &fakeGenerator{initErr: fmt.Errorf("browser launch failed")}

	result, err := RunGenerationFlow(context.Background(), fake, threePrompts(), "", 0, nil)
	require.Error(t, err)
	assert.Empty(t, result.URL)
	assert.Equal(t, 1, fake.closeCount)
}

func TestRunGenerationFlow_ScreenshotFailureIsNotFatal(t *testing.T) {
	fake := &fakeGenerator{url: "u", screenshotErr: true}

	result, err := RunGenerationFlow(context.Background(), fake, threePrompts(), "", 0, nil)
	require.NoError(t, err)
	assert.Len(t, result.ScreensGenerated, 3)
	assert.Empty(t, result.ScreenshotPaths)
}

func TestRunGenerationFlow_NoPrompts(t *testing.T) {
	fake := &fakeGenerator{}
	_, err := RunGenerationFlow(context.Background(), fake, nil, "", 0, nil)
	assert.Error(t, err)
}
