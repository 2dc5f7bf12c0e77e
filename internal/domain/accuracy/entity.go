package accuracy

import (
	"context"
	"math"
	"time"
)

// Row: satu baris agregat per diagram. correct_count ≤ total_count dan
// accuracy_rate selalu bisa diturunkan dari keduanya.
type Row struct {
	DiagramID    string    `json:"diagram_id"`
	TotalCount   int       `json:"total_count"`
	CorrectCount int       `json:"correct_count"`
	AccuracyRate float64   `json:"accuracy_rate"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Rate = correct/total × 100, dibulatkan 2 desimal.
func Rate(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}

// Repository port. Record WAJIB berupa satu statement atomik di sisi store
// (upsert dengan aritmetika server-side); read-then-write dari klien bakal
// kehilangan increment di bawah beban paralel.
type Repository interface {
	Record(ctx context.Context, diagramID string, correct bool) error
	// Top: urut accuracy_rate menurun (knowledge view).
	Top(ctx context.Context, limit int) ([]Row, error)
	// ByTotal: urut total_count menurun (statistik per diagram).
	ByTotal(ctx context.Context, limit int) ([]Row, error)
}
