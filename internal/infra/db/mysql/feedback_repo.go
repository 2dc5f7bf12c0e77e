package mysql

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/feedback"
)

type FeedbackRepository struct{ db *sql.DB }

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository { return &FeedbackRepository{db: db} }

func (r *FeedbackRepository) Insert(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO feedback
(id, analysis_id, is_correct, correct_diagram, correct_fault_a, correct_fault_b,
 comment, expert_level, created_at)
VALUES (?,?,?,?,?,?,?,?,?);`

	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.AnalysisID, nullBool(rec.IsCorrect), nullString(rec.CorrectDiagram),
		nullInt(rec.CorrectFaultA), nullInt(rec.CorrectFaultB),
		rec.Comment, rec.ExpertLevel, rec.CreatedAt,
	)
	return err
}

func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback;`).Scan(&n)
	return n, err
}
