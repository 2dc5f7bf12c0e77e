package feedback

import (
	"context"
	"time"
)

// MaxComment cap untuk teks komentar reviewer.
const MaxComment = 2000

// DefaultExpertLevel kalau reviewer tidak menyebut level keahlian.
const DefaultExpertLevel = "user"

// FaultTolerance: selisih fault_a prediksi vs aktual yang masih dihitung benar
// pada varian session-linked.
const FaultTolerance = 10

// Record: satu per review manusia atas sebuah analysis record. Immutable
// setelah disimpan.
type Record struct {
	ID             string    `json:"id"`
	AnalysisID     string    `json:"analysis_id"`
	IsCorrect      *bool     `json:"is_correct"` // nil = unknown, disimpan NULL
	CorrectDiagram string    `json:"correct_diagram,omitempty"`
	CorrectFaultA  *int      `json:"correct_fault_a,omitempty"`
	CorrectFaultB  *int      `json:"correct_fault_b,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	ExpertLevel    string    `json:"expert_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// DerivedCorrect: varian session-linked menurunkan verdict dari toleransi
// |predicted − actual| ≤ 10 poin persentase.
func DerivedCorrect(predictedFaultA, actualFaultA int) bool {
	d := predictedFaultA - actualFaultA
	if d < 0 {
		d = -d
	}
	return d <= FaultTolerance
}

// Repository port (interface untuk persistence)
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	Count(ctx context.Context) (int, error)
}
