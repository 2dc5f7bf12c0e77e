package usage

import "context"

// Purpose pemanggilan classifier
const (
	PurposeMatch  = "match"
	PurposeReport = "report"
)

// Record: satu per pemanggilan classifier eksternal. Write-once; kehilangan
// record ditoleransi (telemetri non-kritis).
type Record struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Purpose      string  `json:"purpose"`
	SessionID    string  `json:"session_id,omitempty"`
}

// Repository port (interface untuk persistence)
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
}
