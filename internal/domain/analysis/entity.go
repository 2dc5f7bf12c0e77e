package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ID tipe untuk analysis record
type RecordID string

// Confidence enum (손보협회 인정기준 표기 그대로)
type Confidence string

const (
	ConfidenceHigh   Confidence = "상"
	ConfidenceMedium Confidence = "중"
	ConfidenceLow    Confidence = "하"
)

// Truncation caps per free-text field. Oversized input is cut, never rejected.
const (
	MaxInputText    = 10000
	MaxPDFText      = 20000
	MaxOCRText      = 5000
	MaxAnalysisText = 5000
	MaxUserAgent    = 500
	MaxLLMText      = 5000
)

// Aggregate Root: Record: satu per narasi yang dianalisis.
// diagram_id / fault_a / fault_b adalah hasil engine lokal dan tidak pernah
// ditimpa oleh langkah enrichment.
type Record struct {
	ID           RecordID   `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	InputText    string     `json:"input_text"`
	InputType    string     `json:"input_type"`
	HasPDF       bool       `json:"has_pdf"`
	HasImage     bool       `json:"has_image"`
	HasVideo     bool       `json:"has_video"`
	PDFText      string     `json:"pdf_text,omitempty"`
	OCRText      string     `json:"ocr_text,omitempty"`
	VideoEnv     string     `json:"video_env,omitempty"`
	DiagramID    string     `json:"diagram_id"`
	DiagramTitle string     `json:"diagram_title"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory,omitempty"`
	Confidence   Confidence `json:"confidence"`
	MatchScore   float64    `json:"match_score"`
	AltDiagrams  []string   `json:"alt_diagrams"`
	FaultA       int        `json:"fault_a"`
	FaultB       int        `json:"fault_b"`
	LabelA       string     `json:"label_a"`
	LabelB       string     `json:"label_b"`
	BaseFaultA   *int       `json:"base_fault_a,omitempty"`
	BaseFaultB   *int       `json:"base_fault_b,omitempty"`
	DetectedMods []string   `json:"detected_mods"`
	AppliedMods  []string   `json:"applied_mods"`
	Laws         []string   `json:"laws"`
	AnalysisText string     `json:"analysis_text,omitempty"`
	LLMUsed      bool       `json:"llm_used"`
	LLMResponse  json.RawMessage `json:"llm_response,omitempty"`
	SessionID    string     `json:"session_id,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	IPHash       string     `json:"ip_hash,omitempty"`
}

// Summary adalah proyeksi ringkas untuk listing "recent".
type Summary struct {
	ID           RecordID   `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	DiagramID    string     `json:"diagram_id"`
	DiagramTitle string     `json:"diagram_title"`
	Category     string     `json:"category"`
	FaultA       int        `json:"fault_a"`
	FaultB       int        `json:"fault_b"`
	LabelA       string     `json:"label_a"`
	LabelB       string     `json:"label_b"`
	Confidence   Confidence `json:"confidence"`
	MatchScore   float64    `json:"match_score"`
}

// DiagramRef dipakai agregasi frekuensi di overview stats.
type DiagramRef struct {
	DiagramID string `json:"diagram_id"`
	Category  string `json:"category"`
}

// LearningRecord: baris llm_analyses, append-only training data yang
// membandingkan pilihan classifier eksternal dengan hasil engine lokal.
type LearningRecord struct {
	AnalysisID    RecordID `json:"analysis_id"`
	SessionID     string   `json:"session_id"`
	LLMDiagramID  string   `json:"llm_diagram_id,omitempty"`
	LLMFaultA     *int     `json:"llm_fault_a,omitempty"`
	LLMFaultB     *int     `json:"llm_fault_b,omitempty"`
	LLMConfidence string   `json:"llm_confidence,omitempty"`
	LLMReasoning  string   `json:"llm_reasoning,omitempty"`
	LLMAnalysis   string   `json:"llm_analysis,omitempty"`
	LLMModifiers  []string `json:"llm_modifiers"`
	LLMTokens     int64    `json:"llm_tokens"`
	MatchesEngine bool     `json:"matches_engine"`
}

// HashIP menghasilkan hash satu-arah dari alamat klien. Alamat mentah tidak
// pernah disimpan; 16 hex char pertama cukup untuk statistik.
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Truncate memotong string ke maksimum n rune.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
