package postgres

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/accuracy"
)

type AccuracyRepository struct{ db *sql.DB }

func NewAccuracyRepository(db *sql.DB) *AccuracyRepository { return &AccuracyRepository{db: db} }

// Record: increment agregat per diagram dalam SATU statement atomik.
// Aritmetika terjadi server-side terhadap baris tersimpan, jadi dua feedback
// paralel untuk diagram yang sama tidak pernah saling menimpa (tidak ada
// read-then-write di klien).
func (r *AccuracyRepository) Record(ctx context.Context, diagramID string, correct bool) error {
	inc := 0
	if correct {
		inc = 1
	}
	const q = `
INSERT INTO diagram_accuracy (diagram_id, total_count, correct_count, accuracy_rate, updated_at)
VALUES ($1, 1, $2, $2 * 100.0, now())
ON CONFLICT (diagram_id) DO UPDATE SET
 total_count   = diagram_accuracy.total_count + 1,
 correct_count = diagram_accuracy.correct_count + EXCLUDED.correct_count,
 accuracy_rate = ROUND((diagram_accuracy.correct_count + EXCLUDED.correct_count) * 100.0
                       / (diagram_accuracy.total_count + 1), 2),
 updated_at    = now();`
	_, err := r.db.ExecContext(ctx, q, diagramID, inc)
	return err
}

func (r *AccuracyRepository) Top(ctx context.Context, limit int) ([]domain.Row, error) {
	const q = `
SELECT diagram_id, total_count, correct_count, accuracy_rate, updated_at
FROM diagram_accuracy ORDER BY accuracy_rate DESC LIMIT $1;`
	return r.list(ctx, q, limit)
}

func (r *AccuracyRepository) ByTotal(ctx context.Context, limit int) ([]domain.Row, error) {
	const q = `
SELECT diagram_id, total_count, correct_count, accuracy_rate, updated_at
FROM diagram_accuracy ORDER BY total_count DESC LIMIT $1;`
	return r.list(ctx, q, limit)
}

func (r *AccuracyRepository) list(ctx context.Context, q string, limit int) ([]domain.Row, error) {
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		if err := rows.Scan(&row.DiagramID, &row.TotalCount, &row.CorrectCount, &row.AccuracyRate, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
