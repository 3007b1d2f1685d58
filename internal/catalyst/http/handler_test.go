package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/catalyst"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

type stubAI struct {
	body string
}

func (s stubAI) AnalyzeAdvanced(context.Context, ai.AdvancedAnalysisRequest) (ai.AdvancedAnalysis, error) {
	var out ai.AdvancedAnalysis
	err := json.Unmarshal([]byte(s.body), &out)
	return out, err
}

func (stubAI) Classify(context.Context, ai.ClassifyRequest) (ai.ClassificationResult, error) {
	return ai.ClassificationResult{}, nil
}

func (stubAI) SuggestTeam(context.Context, ai.TeamSuggestRequest) (ai.TeamSuggestionResult, error) {
	return ai.TeamSuggestionResult{}, nil
}

func (stubAI) Submit(context.Context, domain.ProjectDraft) (*projects.CreatedProject, error) {
	return &projects.CreatedProject{ID: "p_1"}, nil
}

type envelope struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error"`
	Session catalyst.State `json:"session"`
	Wizard  service.State  `json:"wizard"`
}

func newRouter(t *testing.T, body string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := draftstore.New(draftstore.NewMemorySlot())
	stub := stubAI{body: body}

	wiz, err := service.New(service.Deps{Store: store, Classifier: stub, Teams: stub, Submitter: stub}, service.Config{})
	require.NoError(t, err)
	t.Cleanup(wiz.Shutdown)
	svc, err := catalyst.New(catalyst.Deps{Store: store, Analyzer: stub, Wizard: wiz}, catalyst.Config{})
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(auth.OptionalUser())
	New(svc).Register(api.Group("/catalyst"))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestCatalystFlow(t *testing.T) {
	r := newRouter(t, `{"innovation":{"title":"Bridge Sense","summary":"Cheap strain sensors"}}`)

	code, env := do(t, r, http.MethodPost, "/api/v1/catalyst/sessions", nil)
	require.Equal(t, http.StatusCreated, code)
	base := "/api/v1/catalyst/sessions/" + env.Session.SessionID
	assert.Equal(t, catalyst.ViewForm, env.Session.View)

	code, _ = do(t, r, http.MethodPost, base+"/analyze", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = do(t, r, http.MethodPost, base+"/promote", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, r, http.MethodPatch, base+"/form", map[string]any{"roughIdea": "sensors that warn before bridges crack"})
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, r, http.MethodPost, base+"/analyze?wait=true", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, catalyst.ViewResults, env.Session.View)
	require.NotNil(t, env.Session.Innovation)
	assert.Equal(t, "Bridge Sense", env.Session.Innovation.Title)

	code, env = do(t, r, http.MethodPost, base+"/promote", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Bridge Sense", env.Wizard.Draft.Title)
	assert.Equal(t, "/wizard/sessions/"+env.Wizard.SessionID, env.Session.Navigation)

	code, _ = do(t, r, http.MethodPatch, base+"/form", map[string]any{"roughIdea": "late"})
	assert.Equal(t, http.StatusGone, code)
}

func TestCatalystCollaborationAndReset(t *testing.T) {
	r := newRouter(t, `{"type":"collaboration_opportunity","collaboration":{"similarProjects":[{"id":"p_7","title":"Bridge Sense"}]}}`)

	_, env := do(t, r, http.MethodPost, "/api/v1/catalyst/sessions", nil)
	base := "/api/v1/catalyst/sessions/" + env.Session.SessionID
	do(t, r, http.MethodPatch, base+"/form", map[string]any{"roughIdea": "bridge sensors"})

	code, env := do(t, r, http.MethodPost, base+"/analyze?wait=true", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, catalyst.ViewCollaboration, env.Session.View)
	require.NotNil(t, env.Session.Collaboration)
	assert.Equal(t, "p_7", env.Session.Collaboration.SimilarProjects[0].ID)

	code, env = do(t, r, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, catalyst.ViewForm, env.Session.View)
	assert.Empty(t, env.Session.Form.RoughIdea)

	code, _ = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
