package stages

import (
	"context"
	"testing"

	"designflow/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns canned responses in order and records prompts.
type scriptedClient struct {
	responses []string
	calls     int
	systems   []string
	users     []string
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

func (c *scriptedClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	c.systems = append(c.systems, system)
	c.users = append(c.users, user)
	resp := c.responses[c.calls%len(c.responses)]
	c.calls++
	return resp, nil
}

const validIntentJSON = `{
	"type": "feature",
	"confidence": 0.9,
	"summary": "Add export to reports",
	"details": "Users want CSV export on the reports screen",
	"affectedAreas": ["Reports"],
	"priority": "medium"
}`

func TestDetectIntent(t *testing.T) {
	client := &scriptedClient{responses: []string{validIntentJSON}}

	intent, err := DetectIntent(context.Background(), client, "user: please add CSV export")
	require.NoError(t, err)
	assert.Equal(t, "feature", intent.Type)
	assert.Equal(t, "medium", intent.Priority)
	assert.Equal(t, 1, client.calls)
	assert.Contains(t, client.users[0], "please add CSV export")
}

func TestDetectIntent_RetriesOnceOnBadPayload(t *testing.T) {
	t.Run("second attempt succeeds", func(t *testing.T) {
		client := &scriptedClient{responses: []string{"not json at all", validIntentJSON}}

		intent, err := DetectIntent(context.Background(), client, "conversation")
		require.NoError(t, err)
		assert.Equal(t, "feature", intent.Type)
		assert.Equal(t, 2, client.calls)
	})

	t.Run("invalid schema retried then fails", func(t *testing.T) {
		bad := `{"type": "wish", "confidence": 0.5, "summary": "x", "priority": "medium"}`
		client := &scriptedClient{responses: []string{bad, bad}}

		_, err := DetectIntent(context.Background(), client, "conversation")
		require.Error(t, err)
		assert.Equal(t, 2, client.calls)
		assert.Contains(t, err.Error(), "invalid intent type")
	})
}

func TestIntentValidate(t *testing.T) {
	valid := Intent{Type: "bug", Confidence: 0.8, Summary: "s", Priority: "high"}
	assert.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Intent){
		"bad type":            func(i *Intent) { i.Type = "question" },
		"empty summary":       func(i *Intent) { i.Summary = "" },
		"confidence over one": func(i *Intent) { i.Confidence = 1.5 },
		"negative confidence": func(i *Intent) { i.Confidence = -0.1 },
		"unknown priority":    func(i *Intent) { i.Priority = "urgent" },
	} {
		t.Run(name, func(t *testing.T) {
			i := valid
			mutate(&i)
			assert.Error(t, i.Validate())
		})
	}
}

func TestEnrichContext(t *testing.T) {
	client := &scriptedClient{responses: []string{"## User Request Summary\nA merged analysis."}}
	intent := &Intent{Type: "feature", Confidence: 0.9, Summary: "s", Details: "d", AffectedAreas: []string{"Reports"}, Priority: "low"}
	kctx := &knowledge.Context{
		Chunks: []knowledge.Chunk{
			{Source: "features.md", Section: "Reports", Content: "report details", RelevanceScore: 3},
		},
		DesignSystem: "# Design System\nbits",
	}

	enriched, err := EnrichContext(context.Background(), client, "user: text", intent, kctx)
	require.NoError(t, err)
	assert.Contains(t, enriched.MergedSummary, "merged analysis")
	assert.Equal(t, *intent, enriched.Intent)

	// Prompt carries conversation, knowledge, and design system.
	assert.Contains(t, client.users[0], "user: text")
	assert.Contains(t, client.users[0], "report details")
	assert.Contains(t, client.users[0], "# Design System")
}

func TestEnrichContext_EmptySummaryFails(t *testing.T) {
	client := &scriptedClient{responses: []string{"   "}}
	intent := &Intent{Type: "bug", Confidence: 1, Summary: "s", Priority: "low"}

	_, err := EnrichContext(context.Background(), client, "t", intent, &knowledge.Context{})
	assert.Error(t, err)
}

const validPRDJSON = `{
	"title": "CSV Export for Reports",
	"epicSummary": "Let admins export report data.",
	"problemStatement": "No way to get data out",
	"proposedSolution": "Add an export button",
	"userStories": [{"asA": "Admin", "iWant": "to export reports", "soThat": "I can share them"}],
	"acceptanceCriteria": ["Export downloads a CSV"],
	"outOfScope": ["PDF export"],
	"affectedRoles": ["Admin"],
	"relatedFeatures": ["Reports"],
	"priority": "medium",
	"estimatedComplexity": "small"
}`

func TestGeneratePRD(t *testing.T) {
	client := &scriptedClient{responses: []string{validPRDJSON}}
	enriched := &Enriched{
		Intent:        Intent{Type: "feature", Confidence: 0.9, Summary: "s", Priority: "medium"},
		MergedSummary: "analysis text",
	}

	prd, err := GeneratePRD(context.Background(), client, enriched)
	require.NoError(t, err)
	assert.Equal(t, "CSV Export for Reports", prd.Title)
	require.Len(t, prd.UserStories, 1)
	assert.Equal(t, "Admin", prd.UserStories[0].AsA)
	assert.Contains(t, client.users[0], "analysis text")
}

func TestPRDValidate(t *testing.T) {
	prd := PRD{
		Title:               "T",
		ProblemStatement:    "P",
		UserStories:         []UserStory{{AsA: "Admin", IWant: "x", SoThat: "y"}},
		EstimatedComplexity: "epic",
	}
	assert.NoError(t, prd.Validate())

	noStories := prd
	noStories.UserStories = nil
	assert.Error(t, noStories.Validate())

	badComplexity := prd
	badComplexity.EstimatedComplexity = "gigantic"
	assert.Error(t, badComplexity.Validate())
}

const validUISpecJSON = `{
	"screenList": [
		{"id": "reports", "name": "Reports", "description": "d", "layout": "full-width",
		 "components": [], "states": [], "dataEntities": ["Report"]}
	],
	"navigationFlow": [],
	"globalStates": [],
	"interactionRules": []
}`

func TestGenerateUISpec(t *testing.T) {
	client := &scriptedClient{responses: []string{validUISpecJSON}}
	prd := &PRD{
		Title: "T", ProblemStatement: "P", ProposedSolution: "S",
		UserStories:         []UserStory{{AsA: "Admin", IWant: "x", SoThat: "y"}},
		EstimatedComplexity: "small",
	}
	enriched := &Enriched{MergedSummary: "context"}

	spec, err := GenerateUISpec(context.Background(), client, prd, enriched, "design system text")
	require.NoError(t, err)
	require.Len(t, spec.ScreenList, 1)
	assert.Equal(t, "reports", spec.ScreenList[0].ID)
	assert.Contains(t, client.users[0], "design system text")
	assert.Contains(t, client.users[0], "As a Admin, I want x, so that y")
}

func TestUISpecValidate(t *testing.T) {
	t.Run("no screens", func(t *testing.T) {
		spec := UISpec{}
		assert.Error(t, spec.Validate())
	})

	t.Run("duplicate screen ids", func(t *testing.T) {
		spec := UISpec{ScreenList: []Screen{
			{ID: "a", Name: "A"},
			{ID: "a", Name: "B"},
		}}
		assert.Error(t, spec.Validate())
	})

	t.Run("missing screen name", func(t *testing.T) {
		spec := UISpec{ScreenList: []Screen{{ID: "a"}}}
		assert.Error(t, spec.Validate())
	})
}

func TestGenerateMockup(t *testing.T) {
	mockupJSON := `{
		"projectName": "Export",
		"pages": [{"name": "Reports", "frames": [{"name": "Reports", "screenId": "reports", "width": 1440, "height": 900, "elements": []}]}],
		"designTokens": {"primaryColor": "#2563EB"}
	}`
	client := &scriptedClient{responses: []string{mockupJSON}}
	spec := &UISpec{ScreenList: []Screen{{ID: "reports", Name: "Reports", Layout: "full-width"}}}
	prd := &PRD{Title: "T", ProposedSolution: "S"}

	mockup, err := GenerateMockup(context.Background(), client, spec, prd, "ds")
	require.NoError(t, err)
	assert.Equal(t, "Export", mockup.ProjectName)
	require.Len(t, mockup.Pages, 1)
}
