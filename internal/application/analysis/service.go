package analysis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// Service implements use-cases Analysis Record Store: Create + Enrich.
type Service struct {
	Repo     analysis.Repository
	Learning analysis.LearningRepository
	Clock    Clock
	Salt     string
}

// Command untuk create record. FaultA/FaultB pointer supaya "tidak dikirim"
// bisa dibedakan dari 0.
type CreateCommand struct {
	InputText    string
	InputType    string
	HasPDF       bool
	HasImage     bool
	HasVideo     bool
	PDFText      string
	OCRText      string
	VideoEnv     string
	DiagramID    string
	DiagramTitle string
	Category     string
	Subcategory  string
	Confidence   string
	MatchScore   float64
	AltDiagrams  []string
	FaultA       *int
	FaultB       *int
	LabelA       string
	LabelB       string
	BaseFaultA   *int
	BaseFaultB   *int
	DetectedMods []string
	AppliedMods  []string
	Laws         []string
	AnalysisText string
	LLMUsed      bool
	LLMResponse  json.RawMessage
	SessionID    string
	UserAgent    string
	ClientIP     string
}

type CreateResult struct {
	ID        analysis.RecordID `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
}

// Create validasi field wajib, potong semua free-text ke cap-nya (tidak pernah
// ditolak karena kepanjangan), lalu simpan append-only.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	if cmd.DiagramID == "" || cmd.FaultA == nil || cmd.FaultB == nil {
		return nil, validation.Errorf("필수 분석 데이터가 없습니다")
	}

	rec := &analysis.Record{
		ID:           analysis.RecordID(uuid.NewString()),
		CreatedAt:    s.Clock.Now(),
		InputText:    analysis.Truncate(cmd.InputText, analysis.MaxInputText),
		InputType:    defaultString(cmd.InputType, "text"),
		HasPDF:       cmd.HasPDF,
		HasImage:     cmd.HasImage,
		HasVideo:     cmd.HasVideo,
		PDFText:      analysis.Truncate(cmd.PDFText, analysis.MaxPDFText),
		OCRText:      analysis.Truncate(cmd.OCRText, analysis.MaxOCRText),
		VideoEnv:     cmd.VideoEnv,
		DiagramID:    cmd.DiagramID,
		DiagramTitle: cmd.DiagramTitle,
		Category:     cmd.Category,
		Subcategory:  cmd.Subcategory,
		Confidence:   analysis.Confidence(defaultString(cmd.Confidence, string(analysis.ConfidenceLow))),
		MatchScore:   cmd.MatchScore,
		AltDiagrams:  emptyIfNil(cmd.AltDiagrams),
		FaultA:       *cmd.FaultA,
		FaultB:       *cmd.FaultB,
		LabelA:       defaultString(cmd.LabelA, "A"),
		LabelB:       defaultString(cmd.LabelB, "B"),
		BaseFaultA:   cmd.BaseFaultA,
		BaseFaultB:   cmd.BaseFaultB,
		DetectedMods: emptyIfNil(cmd.DetectedMods),
		AppliedMods:  emptyIfNil(cmd.AppliedMods),
		Laws:         emptyIfNil(cmd.Laws),
		AnalysisText: analysis.Truncate(cmd.AnalysisText, analysis.MaxAnalysisText),
		LLMUsed:      cmd.LLMUsed,
		LLMResponse:  cmd.LLMResponse,
		SessionID:    cmd.SessionID,
		UserAgent:    analysis.Truncate(cmd.UserAgent, analysis.MaxUserAgent),
		IPHash:       analysis.HashIP(cmd.ClientIP, s.Salt),
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return &CreateResult{ID: rec.ID, CreatedAt: rec.CreatedAt}, nil
}

// EnrichmentData: output classifier eksternal yang dilampirkan ke record.
type EnrichmentData struct {
	LLMResponse     json.RawMessage `json:"llm_response"`
	LLMDiagramID    string          `json:"llm_diagram_id"`
	LLMFaultA       *int            `json:"llm_fault_a"`
	LLMFaultB       *int            `json:"llm_fault_b"`
	LLMConfidence   string          `json:"llm_confidence"`
	LLMReasoning    string          `json:"llm_reasoning"`
	LLMAnalysis     string          `json:"llm_analysis"`
	LLMModifiers    []string        `json:"llm_modifiers"`
	LLMTokens       int64           `json:"llm_tokens"`
	EngineDiagramID string          `json:"engine_diagram_id"`
}

type EnrichResult struct {
	ID       analysis.RecordID `json:"id"`
	LLMSaved bool              `json:"llm_saved"`
	LLMError string            `json:"llm_error,omitempty"`
}

// Enrich cari record terbaru untuk session lalu lampirkan output classifier.
// Hasil engine lokal (diagram_id, fault_a, fault_b) tidak pernah disentuh.
// Catatan: lookup "record terbaru per session" memang racy kalau satu session
// menjalankan dua analisis bersamaan; known limitation, bukan bug.
func (s *Service) Enrich(ctx context.Context, sessionID string, data *EnrichmentData) (*EnrichResult, error) {
	if sessionID == "" || data == nil {
		return nil, validation.Errorf("session_id, llm_data 필수")
	}

	latest, err := s.Repo.LatestBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.AttachEnrichment(ctx, latest.ID, data.LLMResponse); err != nil {
		return nil, err
	}

	// Baris pembelajaran terpisah: apakah pilihan classifier cocok dengan
	// hasil engine (string equality pada diagram id). Gagal tulis dilaporkan
	// lewat flag, enrich-nya sendiri tetap sukses.
	learning := &analysis.LearningRecord{
		AnalysisID:    latest.ID,
		SessionID:     sessionID,
		LLMDiagramID:  data.LLMDiagramID,
		LLMFaultA:     data.LLMFaultA,
		LLMFaultB:     data.LLMFaultB,
		LLMConfidence: data.LLMConfidence,
		LLMReasoning:  analysis.Truncate(data.LLMReasoning, analysis.MaxLLMText),
		LLMAnalysis:   analysis.Truncate(data.LLMAnalysis, analysis.MaxLLMText),
		LLMModifiers:  emptyIfNil(data.LLMModifiers),
		LLMTokens:     data.LLMTokens,
		MatchesEngine: data.LLMDiagramID == data.EngineDiagramID,
	}
	res := &EnrichResult{ID: latest.ID, LLMSaved: true}
	if err := s.Learning.Insert(ctx, learning); err != nil {
		log.Printf("llm_analyses insert failed (enrich still ok): %v", err)
		res.LLMSaved = false
		res.LLMError = err.Error()
	}
	return res, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
