package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/mdlabs/atlas-api/internal/application/analysis"
	appclassify "github.com/mdlabs/atlas-api/internal/application/classify"
	appfeedback "github.com/mdlabs/atlas-api/internal/application/feedback"
	appknowledge "github.com/mdlabs/atlas-api/internal/application/knowledge"
	apptraining "github.com/mdlabs/atlas-api/internal/application/training"
	domaccuracy "github.com/mdlabs/atlas-api/internal/domain/accuracy"
	domanalysis "github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	domfeedback "github.com/mdlabs/atlas-api/internal/domain/feedback"
	domknowledge "github.com/mdlabs/atlas-api/internal/domain/knowledge"
)

type fakeClassifier struct {
	reply string
	err   error
}

func (f *fakeClassifier) MatchDiagram(ctx context.Context, text, diagramList string) (string, classifier.Usage, error) {
	return f.reply, classifier.Usage{Model: "test", InputTokens: 10, OutputTokens: 5}, f.err
}

func (f *fakeClassifier) GenerateReport(ctx context.Context, in classifier.ReportInput) (string, classifier.Usage, error) {
	return f.reply, classifier.Usage{InputTokens: 3, OutputTokens: 4}, f.err
}

type memAnalyses struct {
	domanalysis.Repository
	records   []*domanalysis.Record
	bySession map[string]*domanalysis.Record
}

func newMemAnalyses() *memAnalyses {
	return &memAnalyses{bySession: map[string]*domanalysis.Record{}}
}

func (m *memAnalyses) Insert(ctx context.Context, rec *domanalysis.Record) error {
	m.records = append(m.records, rec)
	if rec.SessionID != "" {
		m.bySession[rec.SessionID] = rec
	}
	return nil
}

func (m *memAnalyses) Get(ctx context.Context, id domanalysis.RecordID) (*domanalysis.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domanalysis.ErrSessionNotFound
}

func (m *memAnalyses) LatestBySession(ctx context.Context, sessionID string) (*domanalysis.Record, error) {
	if r, ok := m.bySession[sessionID]; ok {
		return r, nil
	}
	return nil, domanalysis.ErrSessionNotFound
}

func (m *memAnalyses) AttachEnrichment(ctx context.Context, id domanalysis.RecordID, payload json.RawMessage) error {
	return nil
}

type memLearning struct{}

func (memLearning) Insert(ctx context.Context, rec *domanalysis.LearningRecord) error { return nil }

type memFeedback struct {
	domfeedback.Repository
	inserted []*domfeedback.Record
}

func (m *memFeedback) Insert(ctx context.Context, rec *domfeedback.Record) error {
	m.inserted = append(m.inserted, rec)
	return nil
}

type accStub struct {
	domaccuracy.Repository
	recorded int
}

func (a *accStub) Record(ctx context.Context, diagramID string, correct bool) error {
	a.recorded++
	return nil
}

type knowledgeStub struct {
	domknowledge.Repository
}

func (knowledgeStub) SearchPrecedents(ctx context.Context, q domknowledge.PrecedentQuery) ([]domknowledge.Precedent, error) {
	return []domknowledge.Precedent{{ID: "p1", CaseNumber: "2019다12345"}}, nil
}

type okChecker struct{}

func (okChecker) Check(ctx context.Context) error { return nil }

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now() }

type env struct {
	handler  http.Handler
	analyses *memAnalyses
	feedback *memFeedback
	accuracy *accStub
}

func newEnv(clf classifier.Client) *env {
	analyses := newMemAnalyses()
	fb := &memFeedback{}
	acc := &accStub{}
	krepo := knowledgeStub{}

	h := NewRouter(Deps{
		Classify: &appclassify.Service{Client: clf},
		Analysis: &appanalysis.Service{
			Repo: analyses, Learning: memLearning{}, Clock: sysClock{}, Salt: "mdlabs",
		},
		Feedback: &appfeedback.Service{
			Repo: fb, Analyses: analyses, Accuracy: acc, Clock: sysClock{},
		},
		Knowledge: &appknowledge.Service{Repo: krepo, Analyses: analyses, Feedback: fb, Accuracy: acc},
		Training:  &apptraining.Service{Repo: krepo},

		HealthDB:             okChecker{},
		ClassifierConfigured: true,
		Version:              "test",
		Production:           true,
	})
	return &env{handler: h, analyses: analyses, feedback: fb, accuracy: acc}
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestAnalyzeMatch(t *testing.T) {
	e := newEnv(&fakeClassifier{reply: "```json\n{\"diagram_id\":\"252\",\"fault_a\":70,\"fault_b\":30}\n```"})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/analyze",
		`{"text":"교차로에서 직진하다 좌회전 차량과 충돌했습니다","sessionId":"s1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(15), body["tokens"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "252", result["diagram_id"])
	assert.Equal(t, float64(70), result["fault_a"])
}

func TestAnalyzeParseFail(t *testing.T) {
	e := newEnv(&fakeClassifier{reply: "분석이 어렵습니다"})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/analyze",
		`{"text":"교차로에서 사고가 났습니다"}`)

	require.Equal(t, http.StatusOK, w.Code)
	result := body["result"].(map[string]any)
	assert.Equal(t, "JSON 파싱 실패", result["error"])
	assert.Equal(t, "분석이 어렵습니다", result["raw"])
}

func TestAnalyzeTooShort(t *testing.T) {
	e := newEnv(&fakeClassifier{reply: "{}"})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/analyze", `{"text":"짧음"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "짧습니다")
}

func TestAnalyzeQuotaExceeded(t *testing.T) {
	e := newEnv(&fakeClassifier{err: classifier.ErrQuotaExceeded})

	w, _ := doJSON(t, e.handler, http.MethodPost, "/api/analyze",
		`{"text":"교차로에서 사고가 났습니다"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAnalyzeReportMode(t *testing.T) {
	e := newEnv(&fakeClassifier{reply: "과실 분석 의견서"})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/analyze",
		`{"mode":"report","analysisData":{"diagram_id":"252","fault_a":70,"fault_b":30}}`)

	require.Equal(t, http.StatusOK, w.Code)
	result := body["result"].(map[string]any)
	assert.Equal(t, "과실 분석 의견서", result["analysis"])
}

func TestSaveCreate(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/save",
		`{"diagram_id":"252","fault_a":70,"fault_b":30,"session_id":"s1","input_text":"교차로 사고"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["id"])
	require.Len(t, e.analyses.records, 1)
}

func TestSaveCreateMissingFields(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/save", `{"input_text":"데이터 없음"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "필수 분석 데이터가 없습니다", body["error"])
	assert.Empty(t, e.analyses.records)
}

func TestSaveEnrichUnknownSession(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodPatch, "/api/save",
		`{"session_id":"missing","llm_data":{"llm_diagram_id":"252"}}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "해당 세션의 분석 데이터 없음", body["error"])
}

func TestSaveEnrichHappyPath(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	_, created := doJSON(t, e.handler, http.MethodPost, "/api/save",
		`{"diagram_id":"252","fault_a":70,"fault_b":30,"session_id":"s1"}`)

	w, body := doJSON(t, e.handler, http.MethodPatch, "/api/save",
		`{"session_id":"s1","llm_data":{"llm_diagram_id":"252","engine_diagram_id":"252"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, created["id"], body["id"])
	assert.Equal(t, true, body["llm_saved"])
}

func TestFeedbackFlow(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	_, created := doJSON(t, e.handler, http.MethodPost, "/api/save",
		`{"diagram_id":"252","fault_a":70,"fault_b":30}`)

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/feedback",
		`{"analysis_id":"`+created["id"].(string)+`","is_correct":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, 1, e.accuracy.recorded)
}

func TestFeedbackMissingAnalysisID(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/feedback", `{"is_correct":true}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "analysis_id 필수", body["error"])
}

func TestStatsUnknownType(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodGet, "/api/stats?type=bogus", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "Unknown type")
}

func TestKnowledgeRequiresType(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, _ := doJSON(t, e.handler, http.MethodGet, "/api/knowledge", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrecedentsSearch(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodGet, "/api/precedents?keywords=교차로&limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
}

func TestHealth(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database"])
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	w, body := doJSON(t, e.handler, http.MethodDelete, "/api/save", "")

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(&fakeClassifier{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorDetailHiddenInProduction(t *testing.T) {
	// production: 500 tanpa detail
	e := newEnv(&fakeClassifier{err: context.DeadlineExceeded})

	w, body := doJSON(t, e.handler, http.MethodPost, "/api/analyze",
		`{"text":"교차로에서 사고가 났습니다"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body, "detail")
}
