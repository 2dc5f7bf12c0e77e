package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/mdlabs/atlas-api/internal/application/analysis"
	appclassify "github.com/mdlabs/atlas-api/internal/application/classify"
	appfeedback "github.com/mdlabs/atlas-api/internal/application/feedback"
	appknowledge "github.com/mdlabs/atlas-api/internal/application/knowledge"
	apptraining "github.com/mdlabs/atlas-api/internal/application/training"
	domanalysis "github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	domknowledge "github.com/mdlabs/atlas-api/internal/domain/knowledge"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
	"github.com/mdlabs/atlas-api/internal/middleware"
)

type Router struct {
	classifySvc  *appclassify.Service
	analysisSvc  *appanalysis.Service
	feedbackSvc  *appfeedback.Service
	knowledgeSvc *appknowledge.Service
	trainingSvc  *apptraining.Service

	health     http.HandlerFunc
	production bool
}

type Deps struct {
	Classify  *appclassify.Service
	Analysis  *appanalysis.Service
	Feedback  *appfeedback.Service
	Knowledge *appknowledge.Service
	Training  *apptraining.Service

	HealthDB             middleware.HealthChecker
	ClassifierConfigured bool
	Version              string
	Production           bool
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		classifySvc:  d.Classify,
		analysisSvc:  d.Analysis,
		feedbackSvc:  d.Feedback,
		knowledgeSvc: d.Knowledge,
		trainingSvc:  d.Training,
		health:       middleware.HealthHandler(d.Version, d.HealthDB, d.ClassifierConfigured),
		production:   d.Production,
	}

	mux := chi.NewRouter()

	// Surface terbuka penuh untuk CORS; preflight OPTIONS dijawab 200 di sini.
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", r.health)
		rt.Get("/metrics", middleware.MetricsHandler)

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/save", r.wrap(r.handleCreate))
		rt.Patch("/save", r.wrap(r.handleEnrich))
		rt.Post("/feedback", r.wrap(r.handleFeedback))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/knowledge", r.wrap(r.handleKnowledge))
		rt.Get("/precedents", r.wrap(r.handlePrecedents))
		rt.Post("/precedents", r.wrap(r.handlePrecedents))
		rt.Post("/upload-training", r.wrap(r.handleUploadTraining))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap petakan error domain ke status HTTP. Detail error 500 hanya keluar di
// lingkungan non-production.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Message})
		case errors.Is(err, domanalysis.ErrSessionNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "해당 세션의 분석 데이터 없음"})
		case errors.Is(err, sql.ErrNoRows):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		case errors.Is(err, classifier.ErrQuotaExceeded):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "classifier quota exceeded"})
		default:
			body := map[string]any{"error": "서버 오류가 발생했습니다"}
			if !r.production {
				body["detail"] = err.Error()
			}
			writeJSON(w, http.StatusInternalServerError, body)
		}
	}
}

// POST /api/analyze
// Body: {text, diagramList, mode, analysisData, sessionId}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text         string                  `json:"text"`
		DiagramList  string                  `json:"diagramList"`
		Mode         string                  `json:"mode"`
		AnalysisData *classifier.ReportInput `json:"analysisData"`
		SessionID    string                  `json:"sessionId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return validation.Errorf("잘못된 요청 형식입니다")
	}

	ctx := req.Context()

	if body.Mode == "report" {
		if body.AnalysisData == nil {
			return validation.Errorf("analysisData 필수")
		}
		text, u, err := r.classifySvc.Report(ctx, *body.AnalysisData, body.SessionID)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"result":  map[string]any{"analysis": text},
			"tokens":  u.TotalTokens(),
		})
		return nil
	}

	middleware.IncrementClassify()
	res, u, err := r.classifySvc.Classify(ctx, body.Text, body.DiagramList, body.SessionID)
	if err != nil {
		return err
	}

	var result any
	if res.ParseFailed() {
		middleware.IncrementClassifyParseFails()
		result = map[string]any{"error": "JSON 파싱 실패", "raw": res.Raw}
	} else {
		result = res.Match
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
		"tokens":  u.TotalTokens(),
	})
	return nil
}

// POST /api/save: create analysis record
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		InputText    string          `json:"input_text"`
		InputType    string          `json:"input_type"`
		HasPDF       bool            `json:"has_pdf"`
		HasImage     bool            `json:"has_image"`
		HasVideo     bool            `json:"has_video"`
		PDFText      string          `json:"pdf_text"`
		OCRText      string          `json:"ocr_text"`
		VideoEnv     string          `json:"video_env"`
		DiagramID    string          `json:"diagram_id"`
		DiagramTitle string          `json:"diagram_title"`
		Category     string          `json:"category"`
		Subcategory  string          `json:"subcategory"`
		Confidence   string          `json:"confidence"`
		MatchScore   float64         `json:"match_score"`
		AltDiagrams  []string        `json:"alt_diagrams"`
		FaultA       *int            `json:"fault_a"`
		FaultB       *int            `json:"fault_b"`
		LabelA       string          `json:"label_a"`
		LabelB       string          `json:"label_b"`
		BaseFaultA   *int            `json:"base_fault_a"`
		BaseFaultB   *int            `json:"base_fault_b"`
		DetectedMods []string        `json:"detected_mods"`
		AppliedMods  []string        `json:"applied_mods"`
		Laws         []string        `json:"laws"`
		AnalysisText string          `json:"analysis_text"`
		LLMUsed      bool            `json:"llm_used"`
		LLMResponse  json.RawMessage `json:"llm_response"`
		SessionID    string          `json:"session_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return validation.Errorf("잘못된 요청 형식입니다")
	}

	res, err := r.analysisSvc.Create(req.Context(), appanalysis.CreateCommand{
		InputText:    body.InputText,
		InputType:    body.InputType,
		HasPDF:       body.HasPDF,
		HasImage:     body.HasImage,
		HasVideo:     body.HasVideo,
		PDFText:      body.PDFText,
		OCRText:      body.OCRText,
		VideoEnv:     body.VideoEnv,
		DiagramID:    body.DiagramID,
		DiagramTitle: body.DiagramTitle,
		Category:     body.Category,
		Subcategory:  body.Subcategory,
		Confidence:   body.Confidence,
		MatchScore:   body.MatchScore,
		AltDiagrams:  body.AltDiagrams,
		FaultA:       body.FaultA,
		FaultB:       body.FaultB,
		LabelA:       body.LabelA,
		LabelB:       body.LabelB,
		BaseFaultA:   body.BaseFaultA,
		BaseFaultB:   body.BaseFaultB,
		DetectedMods: body.DetectedMods,
		AppliedMods:  body.AppliedMods,
		Laws:         body.Laws,
		AnalysisText: body.AnalysisText,
		LLMUsed:      body.LLMUsed,
		LLMResponse:  body.LLMResponse,
		SessionID:    body.SessionID,
		UserAgent:    req.UserAgent(),
		ClientIP:     middleware.ClientIP(req),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"id":         res.ID,
		"created_at": res.CreatedAt,
	})
	return nil
}

// PATCH /api/save: enrich latest record for session with classifier output
func (r *Router) handleEnrich(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		SessionID string                      `json:"session_id"`
		LLMData   *appanalysis.EnrichmentData `json:"llm_data"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return validation.Errorf("잘못된 요청 형식입니다")
	}

	res, err := r.analysisSvc.Enrich(req.Context(), body.SessionID, body.LLMData)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"id":        res.ID,
		"llm_saved": res.LLMSaved,
		"llm_error": res.LLMError,
	})
	return nil
}

// POST /api/feedback
func (r *Router) handleFeedback(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		AnalysisID     string `json:"analysis_id"`
		IsCorrect      *bool  `json:"is_correct"`
		CorrectDiagram string `json:"correct_diagram"`
		CorrectFaultA  *int   `json:"correct_fault_a"`
		CorrectFaultB  *int   `json:"correct_fault_b"`
		Comment        string `json:"comment"`
		ExpertLevel    string `json:"expert_level"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return validation.Errorf("잘못된 요청 형식입니다")
	}

	id, err := r.feedbackSvc.Submit(req.Context(), appfeedback.SubmitCommand{
		AnalysisID:     body.AnalysisID,
		IsCorrect:      body.IsCorrect,
		CorrectDiagram: body.CorrectDiagram,
		CorrectFaultA:  body.CorrectFaultA,
		CorrectFaultB:  body.CorrectFaultB,
		Comment:        body.Comment,
		ExpertLevel:    body.ExpertLevel,
	})
	if err != nil {
		return err
	}
	middleware.IncrementFeedback()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
	return nil
}

// GET /api/stats?type=overview|diagram|recent
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	switch typ := req.URL.Query().Get("type"); typ {
	case "", "overview":
		ov, err := r.knowledgeSvc.OverviewStats(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, ov)
	case "diagram":
		rows, err := r.knowledgeSvc.DiagramStats(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"diagram_stats": orEmpty(rows)})
	case "recent":
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		list, err := r.knowledgeSvc.Recent(ctx, middleware.ValidateLimit(limit))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"recent": orEmpty(list)})
	default:
		return validation.Errorf("Unknown type. Use: overview, diagram, recent")
	}
	return nil
}

// GET /api/knowledge?type=categories|stats|accuracy|similar|violation|motorcycle|autonomous|precedent
func (r *Router) handleKnowledge(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	q := req.URL.Query()

	switch q.Get("type") {
	case "categories":
		data, err := r.knowledgeSvc.Categories(ctx, q.Get("tier"))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(data)})
	case "stats":
		stats, total, err := r.knowledgeSvc.TrainingStats(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "total": total})
	case "accuracy":
		rows, err := r.knowledgeSvc.AccuracyRows(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(rows)})
	case "similar":
		data, err := r.knowledgeSvc.Similar(ctx, q.Get("accident_place"), q.Get("accident_type"))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(data)})
	case "violation":
		stats, err := r.knowledgeSvc.ViolationStats(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(stats)})
	case "motorcycle":
		data, err := r.knowledgeSvc.Motorcycle(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(data)})
	case "autonomous":
		data, err := r.knowledgeSvc.Autonomous(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": orEmpty(data)})
	case "precedent":
		return r.handlePrecedents(w, req)
	default:
		return validation.Errorf("type 파라미터 필요: categories|stats|accuracy|similar|violation|motorcycle|autonomous|precedent")
	}
	return nil
}

// GET|POST /api/precedents
func (r *Router) handlePrecedents(w http.ResponseWriter, req *http.Request) error {
	var q domknowledge.PrecedentQuery

	if req.Method == http.MethodPost {
		var body struct {
			Keywords   string `json:"keywords"`
			Categories string `json:"categories"`
			Court      string `json:"court"`
			FaultMin   *int   `json:"fault_min"`
			FaultMax   *int   `json:"fault_max"`
			Limit      int    `json:"limit"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return validation.Errorf("잘못된 요청 형식입니다")
		}
		q = domknowledge.PrecedentQuery{
			Keywords:   body.Keywords,
			Categories: body.Categories,
			Court:      body.Court,
			FaultMin:   body.FaultMin,
			FaultMax:   body.FaultMax,
			Limit:      body.Limit,
		}
	} else {
		vals := req.URL.Query()
		q = domknowledge.PrecedentQuery{
			Keywords:   vals.Get("keywords"),
			Categories: vals.Get("categories"),
			Court:      vals.Get("court"),
			FaultMin:   queryInt(vals.Get("fault_min")),
			FaultMax:   queryInt(vals.Get("fault_max")),
		}
		if n, err := strconv.Atoi(vals.Get("limit")); err == nil {
			q.Limit = n
		}
	}

	results, err := r.knowledgeSvc.Precedents(req.Context(), q)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(results),
		"results": orEmpty(results),
	})
	return nil
}

// POST /api/upload-training: bulk dataset upload
func (r *Router) handleUploadTraining(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return validation.Errorf("records[] required")
	}

	records := make([]apptraining.UploadRecord, 0, len(body.Records))
	for _, raw := range body.Records {
		var rec apptraining.UploadRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return validation.Errorf("records[] 형식이 잘못되었습니다")
		}
		rec.Raw = raw
		records = append(records, rec)
	}

	res, err := r.trainingSvc.Upload(req.Context(), records)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"uploaded":   res.Uploaded,
		"total_sent": res.TotalSent,
		"names":      res.Names,
	})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// orEmpty supaya list kosong ter-encode sebagai [] bukan null
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
