package mysql

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/accuracy"
)

type AccuracyRepository struct{ db *sql.DB }

func NewAccuracyRepository(db *sql.DB) *AccuracyRepository { return &AccuracyRepository{db: db} }

// Record: increment agregat dalam satu statement atomik. MySQL mengevaluasi
// assignment ON DUPLICATE KEY berurutan, jadi accuracy_rate dihitung dari
// total_count/correct_count yang sudah di-increment di assignment sebelumnya.
func (r *AccuracyRepository) Record(ctx context.Context, diagramID string, correct bool) error {
	inc := 0
	if correct {
		inc = 1
	}
	const q = `
INSERT INTO diagram_accuracy (diagram_id, total_count, correct_count, accuracy_rate, updated_at)
VALUES (?, 1, ?, ? * 100.0, NOW())
ON DUPLICATE KEY UPDATE
 total_count   = total_count + 1,
 correct_count = correct_count + VALUES(correct_count),
 accuracy_rate = ROUND(correct_count * 100.0 / total_count, 2),
 updated_at    = NOW();`
	_, err := r.db.ExecContext(ctx, q, diagramID, inc, inc)
	return err
}

func (r *AccuracyRepository) Top(ctx context.Context, limit int) ([]domain.Row, error) {
	const q = `
SELECT diagram_id, total_count, correct_count, accuracy_rate, updated_at
FROM diagram_accuracy ORDER BY accuracy_rate DESC LIMIT ?;`
	return r.list(ctx, q, limit)
}

func (r *AccuracyRepository) ByTotal(ctx context.Context, limit int) ([]domain.Row, error) {
	const q = `
SELECT diagram_id, total_count, correct_count, accuracy_rate, updated_at
FROM diagram_accuracy ORDER BY total_count DESC LIMIT ?;`
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
