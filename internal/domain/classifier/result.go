package classifier

// Match is the structured reply the external classifier is instructed to
// return: best diagram, fault split and supporting reasoning.
type Match struct {
	DiagramID         string   `json:"diagram_id"`
	DiagramTitle      string   `json:"diagram_title"`
	Category          string   `json:"category"`
	Confidence        string   `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	FaultA            int      `json:"fault_a"`
	FaultB            int      `json:"fault_b"`
	LabelA            string   `json:"label_a"`
	LabelB            string   `json:"label_b"`
	DetectedModifiers []string `json:"detected_modifiers"`
	ModifierReasoning string   `json:"modifier_reasoning"`
	LegalBasis        []string `json:"legal_basis"`
	Analysis          string   `json:"analysis"`
}

// Result adalah tagged result: Match terisi kalau decode berhasil, kalau gagal
// Raw menyimpan teks mentah dari model. Caller wajib cek ParseFailed;
// decode gagal bukan error.
type Result struct {
	Match *Match `json:"match,omitempty"`
	Raw   string `json:"raw,omitempty"`
}

func (r Result) ParseFailed() bool { return r.Match == nil }

// Usage token per satu pemanggilan classifier.
type Usage struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

func (u Usage) TotalTokens() int64 { return u.InputTokens + u.OutputTokens }

// Harga per 1K token (USD) untuk model default.
const (
	inputCostPer1K  = 0.003
	outputCostPer1K = 0.015
)

// CostUSD estimasi biaya pemanggilan, untuk metering saja.
func (u Usage) CostUSD() float64 {
	return (float64(u.InputTokens)*inputCostPer1K + float64(u.OutputTokens)*outputCostPer1K) / 1000
}

// ReportInput adalah konteks analisis yang sudah dihitung, bahan untuk mode
// "report" (teks opini gabungan untuk 감정서).
type ReportInput struct {
	Category     string   `json:"category"`
	DiagramID    string   `json:"diagram_id"`
	DiagramTitle string   `json:"diagram_title"`
	LabelA       string   `json:"label_a"`
	LabelB       string   `json:"label_b"`
	BaseFaultA   int      `json:"base_fault_a"`
	BaseFaultB   int      `json:"base_fault_b"`
	Modifiers    []string `json:"modifiers"`
	FaultA       int      `json:"fault_a"`
	FaultB       int      `json:"fault_b"`
	InputText    string   `json:"input_text"`
}
