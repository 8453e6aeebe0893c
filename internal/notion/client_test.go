package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"designflow/internal/config"
	"designflow/internal/stages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotion is a minimal Notion API stand-in. Databases listed in
// missing return 404 on the accessibility probe.
type fakeNotion struct {
	mu      sync.Mutex
	missing map[string]bool
	pages   []map[string]any
	patches []string
	nextID  int
}

func (f *fakeNotion) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /databases/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.missing[r.PathValue("id")] {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"object":"error","status":404}`)
			return
		}
		fmt.Fprint(w, `{"object":"database"}`)
	})

	mux.HandleFunc("POST /pages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		data, _ := io.ReadAll(r.Body)
		var page map[string]any
		if err := json.Unmarshal(data, &page); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.pages = append(f.pages, page)
		f.nextID++
		fmt.Fprintf(w, `{"id":"page-%d"}`, f.nextID)
	})

	mux.HandleFunc("PATCH /blocks/{id}/children", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.patches = append(f.patches, r.PathValue("id"))
		fmt.Fprint(w, `{"object":"list"}`)
	})

	return mux
}

func testClient(t *testing.T, fake *fakeNotion) *Client {
	t.Helper()
	if fake.missing == nil {
		fake.missing = map[string]bool{}
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	c := NewClient(config.NotionConfig{
		APIKey:     "secret",
		FeedbackDB: "db-feedback",
		EpicDB:     "db-epic",
		TaskDB:     "db-task",
	}, nil)
	c.baseURL = srv.URL
	return c
}

func testIntent() *stages.Intent {
	return &stages.Intent{
		Type: "feature", Confidence: 0.9, Summary: "Add exports",
		Details: "CSV export", AffectedAreas: []string{"Reports"}, Priority: "medium",
	}
}

func testPRD() *stages.PRD {
	return &stages.PRD{
		Title: "Report Export", ProblemStatement: "No export", ProposedSolution: "Add button",
		UserStories:         []stages.UserStory{{AsA: "Admin", IWant: "exports", SoThat: "sharing"}},
		AcceptanceCriteria:  []string{"Downloads a CSV"},
		Priority:            "medium",
		EstimatedComplexity: "small",
	}
}

func TestValidateConfig(t *testing.T) {
	c := NewClient(config.NotionConfig{APIKey: "k"}, nil)
	err := c.validateConfig()

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"NOTION_DB_FEEDBACK", "NOTION_DB_EPIC", "NOTION_DB_TASK"}, cfgErr.Missing)

	_, err = c.CreateFeedback(context.Background(), testIntent(), "summary")
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://notion.so/abc123", PageURL("abc-123"))
}

func TestCreateFeedback(t *testing.T) {
	fake := &fakeNotion{}
	c := testClient(t, fake)

	id, err := c.CreateFeedback(context.Background(), testIntent(), "conversation summary")
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	require.Len(t, fake.pages, 1)
	props := fake.pages[0]["properties"].(map[string]any)
	title := props["Request name"].(map[string]any)["title"].([]any)
	text := title[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "[FEATURE] Add exports", text["content"])
}

func TestCreateFeedback_InaccessibleDatabaseIsSoftSkip(t *testing.T) {
	fake := &fakeNotion{missing: map[string]bool{"db-feedback": true}}
	c := testClient(t, fake)

	id, err := c.CreateFeedback(context.Background(), testIntent(), "s")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, fake.pages)
}

func TestCreateEpic(t *testing.T) {
	fake := &fakeNotion{}
	c := testClient(t, fake)

	id, err := c.CreateEpic(context.Background(), testPRD(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	props := fake.pages[0]["properties"].(map[string]any)
	title := props["Epic"].(map[string]any)["title"].([]any)
	text := title[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "[FEATURE] Report Export", text["content"])

	status := props["Status"].(map[string]any)["status"].(map[string]any)
	assert.Equal(t, "Backlog", status["name"])

	domain := props["Feature/Domain"].(map[string]any)["multi_select"].([]any)
	assert.Equal(t, "Reports", domain[0].(map[string]any)["name"])
}

func TestCreateEpic_InaccessibleDatabaseFails(t *testing.T) {
	fake := &fakeNotion{missing: map[string]bool{"db-epic": true}}
	c := testClient(t, fake)

	_, err := c.CreateEpic(context.Background(), testPRD(), testIntent())
	assert.Error(t, err)
}

func TestCreateTasks(t *testing.T) {
	fake := &fakeNotion{}
	c := testClient(t, fake)

	spec := &stages.UISpec{
		ScreenList: []stages.Screen{
			{ID: "dashboard", Name: "Dashboard", Layout: "full-width"},
			{ID: "settings", Name: "Settings", Layout: "form"},
		},
		InteractionRules: []stages.InteractionRule{
			{Screen: "dashboard", Component: "Table", Event: "click", Behavior: "opens detail"},
			{Screen: "dashboard", Component: "Filter", Event: "change", Behavior: "narrows rows", Validation: "non-empty"},
		},
	}

	ids, err := c.CreateTasks(context.Background(), testPRD(), spec, "epic-9")
	require.NoError(t, err)
	// Two screen tasks plus one interaction task for the dashboard.
	assert.Len(t, ids, 3)
	require.Len(t, fake.pages, 3)

	// Every task is linked to the epic.
	for _, page := range fake.pages {
		props := page["properties"].(map[string]any)
		relation := props["Epic"].(map[string]any)["relation"].([]any)
		assert.Equal(t, "epic-9", relation[0].(map[string]any)["id"])
	}
}

func TestCreateTasks_InaccessibleDatabaseIsSoftSkip(t *testing.T) {
	fake := &fakeNotion{missing: map[string]bool{"db-task": true}}
	c := testClient(t, fake)

	ids, err := c.CreateTasks(context.Background(), testPRD(), &stages.UISpec{
		ScreenList: []stages.Screen{{ID: "a", Name: "A"}},
	}, "epic-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateTicketWithDesign(t *testing.T) {
	fake := &fakeNotion{}
	c := testClient(t, fake)

	err := c.UpdateTicketWithDesign(context.Background(), "page-7", "https://www.figma.com/make/x", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"page-7"}, fake.patches)
}

func TestUpdateTicketWithDesign_EmptyPageIDIsSoftSkip(t *testing.T) {
	fake := &fakeNotion{}
	c := testClient(t, fake)

	err := c.UpdateTicketWithDesign(context.Background(), "", "https://example.com", "")
	require.NoError(t, err)
	assert.Empty(t, fake.patches)
}
