package catalyst

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	reqs  []ai.AdvancedAnalysisRequest
	token string
	body  string
	err   error
}

func (f *fakeAnalyzer) AnalyzeAdvanced(ctx context.Context, req ai.AdvancedAnalysisRequest) (ai.AdvancedAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	f.token = auth.TokenFromContext(ctx)
	if f.err != nil {
		return ai.AdvancedAnalysis{}, f.err
	}
	var out ai.AdvancedAnalysis
	err := json.Unmarshal([]byte(f.body), &out)
	return out, err
}

func (f *fakeAnalyzer) respond(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

func (f *fakeAnalyzer) requests() []ai.AdvancedAnalysisRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.AdvancedAnalysisRequest(nil), f.reqs...)
}

const (
	innovationBody    = `{"type":"innovation_analysis","innovation":{"title":"Smart Bridge Monitor","summary":"Sensors on bridges","opportunity":{"size":"large"}},"smartKit":{"parts":["ESP32"]}}`
	noTypeBody        = `{"innovation":{"title":"Smart Bridge Monitor"}}`
	collaborationBody = `{"type":"collaboration_opportunity","collaboration":{"similarProjects":[{"id":"p_7","title":"Bridge Sense"}],"joinSuggestions":["Offer firmware help"]}}`
)

type noopClassifier struct{}

func (noopClassifier) Classify(context.Context, ai.ClassifyRequest) (ai.ClassificationResult, error) {
	return ai.ClassificationResult{}, nil
}

func (noopClassifier) SuggestTeam(context.Context, ai.TeamSuggestRequest) (ai.TeamSuggestionResult, error) {
	return ai.TeamSuggestionResult{}, nil
}

type noopSubmitter struct{}

func (noopSubmitter) Submit(context.Context, domain.ProjectDraft) (*projects.CreatedProject, error) {
	return &projects.CreatedProject{ID: "p_1"}, nil
}

type harness struct {
	svc      *Service
	wizard   *service.Service
	store    *draftstore.Store
	analyzer *fakeAnalyzer
	events   *notify.Recorder
}

var owner = service.Owner{ID: "u_1", DisplayName: "Uma"}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:    draftstore.New(draftstore.NewMemorySlot()),
		analyzer: &fakeAnalyzer{body: innovationBody},
		events:   notify.NewRecorder(50),
	}
	wiz, err := service.New(service.Deps{
		Store:      h.store,
		Classifier: noopClassifier{},
		Teams:      noopClassifier{},
		Submitter:  noopSubmitter{},
	}, service.Config{})
	require.NoError(t, err)
	h.wizard = wiz
	t.Cleanup(wiz.Shutdown)

	svc, err := New(Deps{Store: h.store, Analyzer: h.analyzer, Wizard: wiz, Notifier: h.events}, Config{})
	require.NoError(t, err)
	h.svc = svc
	t.Cleanup(svc.Shutdown)
	return h
}

func (h *harness) mount(t *testing.T) *Session {
	t.Helper()
	sess, err := h.svc.Mount(context.Background(), owner)
	require.NoError(t, err)
	return sess
}

func waitTicket(t *testing.T, tk async.Ticket) {
	t.Helper()
	select {
	case <-tk.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not complete")
	}
}

func fillIdea(t *testing.T, sess *Session) {
	t.Helper()
	_, err := sess.UpdateForm(context.Background(), FormPatch{
		RoughIdea:       domain.Some("Cheap sensors that warn when a bridge starts to crack"),
		ProblemScope:    domain.Some("Inspections are rare"),
		ExperienceLevel: domain.Some("Intermediate"),
		TeamPreference:  domain.Some("team"),
	})
	require.NoError(t, err)
}

func TestAnalyze_RequiresRoughIdea(t *testing.T) {
	h := newHarness(t)
	sess := h.mount(t)

	_, err := sess.Analyze(context.Background())
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "roughIdea", ve.Fields[0].Field)
	assert.Empty(t, h.analyzer.requests())
}

func TestAnalyze_InnovationResult(t *testing.T) {
	h := newHarness(t)
	sess := h.mount(t)
	fillIdea(t, sess)

	tk, err := sess.Analyze(auth.ContextWithToken(context.Background(), "tok-9"))
	require.NoError(t, err)
	waitTicket(t, tk)

	st := sess.State()
	assert.Equal(t, ViewResults, st.View)
	assert.Equal(t, async.StatusSuccess, st.Analysis.Status)
	require.NotNil(t, st.Innovation)
	assert.Equal(t, "Smart Bridge Monitor", st.Innovation.Title)
	assert.JSONEq(t, `{"parts":["ESP32"]}`, string(st.SmartKit))
	assert.Nil(t, st.Collaboration)
	assert.Equal(t, "tok-9", h.analyzer.token)
	assert.False(t, h.analyzer.requests()[0].SkipCollaborationCheck)

	var rec Record
	ok, err := h.store.Load(context.Background(), draftKey(owner.ID), &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.HasResults())
}

func TestAnalyze_MissingDiscriminatorIsInnovation(t *testing.T) {
	h := newHarness(t)
	h.analyzer.respond(noTypeBody)
	sess := h.mount(t)
	fillIdea(t, sess)

	tk, err := sess.Analyze(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	st := sess.State()
	assert.Equal(t, ViewResults, st.View)
	require.NotNil(t, st.Innovation)
	assert.Equal(t, "Smart Bridge Monitor", st.Innovation.Title)
}

func TestAnalyze_CollaborationThenProceed(t *testing.T) {
	h := newHarness(t)
	h.analyzer.respond(collaborationBody)
	sess := h.mount(t)
	fillIdea(t, sess)

	tk, err := sess.Analyze(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	st := sess.State()
	assert.Equal(t, ViewCollaboration, st.View)
	require.NotNil(t, st.Collaboration)
	assert.Equal(t, "p_7", st.Collaboration.SimilarProjects[0].ID)
	assert.Nil(t, st.Innovation)
	assert.Contains(t, h.events.Titles(), "Similar projects found")

	h.analyzer.respond(innovationBody)
	tk, err = sess.ProceedWithNewIdea(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	st = sess.State()
	assert.Equal(t, ViewResults, st.View)
	assert.True(t, st.Form.SkipCollaborationCheck)
	reqs := h.analyzer.requests()
	require.Len(t, reqs, 2)
	assert.True(t, reqs[1].SkipCollaborationCheck)
}

func TestAnalyze_Failure(t *testing.T) {
	h := newHarness(t)
	h.analyzer.err = &ai.Error{Status: 502, Message: "model unavailable"}
	sess := h.mount(t)
	fillIdea(t, sess)

	tk, err := sess.Analyze(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	st := sess.State()
	assert.Equal(t, ViewForm, st.View)
	assert.Equal(t, async.StatusError, st.Analysis.Status)
	assert.Equal(t, "model unavailable", st.Analysis.LastError)
	assert.Contains(t, h.events.Titles(), "Analysis failed")
}

func TestMount_RestoresResults(t *testing.T) {
	h := newHarness(t)
	rec := &Record{
		FormData:       RoughIdea{RoughIdea: "restored idea"},
		InnovationData: &ai.InnovationAnalysis{Title: "Restored"},
	}
	require.NoError(t, h.store.Save(context.Background(), draftKey(owner.ID), rec))

	sess := h.mount(t)
	st := sess.State()
	assert.Equal(t, ViewResults, st.View)
	assert.Equal(t, "restored idea", st.Form.RoughIdea)
	require.NotEmpty(t, st.Notifications)
	assert.Equal(t, "Draft restored", st.Notifications[0].Title)
}

func TestMount_RestoresCollaboration(t *testing.T) {
	h := newHarness(t)
	rec := &Record{
		FormData: RoughIdea{RoughIdea: "bridge sensors"},
		Collaboration: &ai.Collaboration{
			SimilarProjects: []ai.SimilarProject{{ID: "p_7", Title: "Bridge Sense"}},
			JoinSuggestions: []string{"Offer firmware help"},
		},
	}
	require.NoError(t, h.store.Save(context.Background(), draftKey(owner.ID), rec))

	sess := h.mount(t)
	st := sess.State()
	assert.Equal(t, ViewCollaboration, st.View)
	require.NotNil(t, st.Collaboration)
	assert.Equal(t, "p_7", st.Collaboration.SimilarProjects[0].ID)
	assert.Nil(t, st.Innovation)
	require.NotEmpty(t, st.Notifications)
	assert.Equal(t, "Draft restored", st.Notifications[0].Title)
	assert.Equal(t, "Your previous analysis has been restored.", st.Notifications[0].Message)
}

func TestProceedWithNewIdea_InvalidLeavesDraftUntouched(t *testing.T) {
	h := newHarness(t)
	rec := &Record{
		FormData:      RoughIdea{RoughIdea: "   "},
		Collaboration: &ai.Collaboration{SimilarProjects: []ai.SimilarProject{{ID: "p_7"}}},
	}
	require.NoError(t, h.store.Save(context.Background(), draftKey(owner.ID), rec))
	sess := h.mount(t)

	_, err := sess.ProceedWithNewIdea(context.Background())
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "roughIdea", ve.Fields[0].Field)
	assert.Empty(t, h.analyzer.requests())

	st := sess.State()
	assert.False(t, st.Form.SkipCollaborationCheck)
	assert.Equal(t, ViewCollaboration, st.View)

	var saved Record
	found, err := h.store.Load(context.Background(), draftKey(owner.ID), &saved)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, saved.FormData.SkipCollaborationCheck)
	assert.NotNil(t, saved.Collaboration)
}

func TestTryAnotherIdea(t *testing.T) {
	h := newHarness(t)
	sess := h.mount(t)
	fillIdea(t, sess)
	tk, err := sess.Analyze(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	st, err := sess.TryAnotherIdea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ViewForm, st.View)
	assert.Empty(t, st.Form.RoughIdea)
	assert.Equal(t, async.StatusIdle, st.Analysis.Status)

	var rec Record
	ok, err := h.store.Load(context.Background(), draftKey(owner.ID), &rec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromote(t *testing.T) {
	h := newHarness(t)
	sess := h.mount(t)

	_, err := sess.Promote(context.Background())
	assert.ErrorIs(t, err, ErrNothingToPromote)

	fillIdea(t, sess)
	tk, err := sess.Analyze(context.Background())
	require.NoError(t, err)
	waitTicket(t, tk)

	wiz, err := sess.Promote(context.Background())
	require.NoError(t, err)

	st := sess.State()
	assert.False(t, st.Mounted)
	assert.Equal(t, "/wizard/sessions/"+wiz.ID(), st.Navigation)

	ws := wiz.State()
	assert.Equal(t, "Smart Bridge Monitor", ws.Draft.Title)
	assert.Equal(t, "Sensors on bridges", ws.Draft.Description)
	assert.Equal(t, "Inspections are rare", ws.Draft.ProblemStatement)
	assert.Equal(t, domain.ComplexityIntermediate, ws.Draft.Complexity)
	assert.True(t, ws.Draft.IsTeamProject)
	assert.Contains(t, string(ws.Draft.AIAnalysis), `"innovation_analysis"`)

	got, err := h.wizard.Session(wiz.ID(), owner.ID)
	require.NoError(t, err)
	assert.Same(t, wiz, got)

	var rec Record
	ok, err := h.store.Load(context.Background(), draftKey(owner.ID), &rec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "first line", headline("first line\nsecond"))
	long := strings.Repeat("é", 100)
	assert.Equal(t, maxTitleRunes, len([]rune(headline(long))))
}

func TestService_Registry(t *testing.T) {
	h := newHarness(t)
	sess := h.mount(t)

	_, err := h.svc.Session(sess.ID(), "intruder")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 1, h.svc.Len())

	require.NoError(t, h.svc.Unmount(sess.ID(), owner.ID))
	assert.True(t, sess.Closed())
	assert.Equal(t, 0, h.svc.Len())

	_, err = sess.UpdateForm(context.Background(), FormPatch{RoughIdea: domain.Some("late")})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	h.mount(t)
	assert.Equal(t, 1, h.svc.EvictIdle(0))
}
