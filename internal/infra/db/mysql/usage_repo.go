package mysql

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/usage"
)

type UsageRepository struct{ db *sql.DB }

func NewUsageRepository(db *sql.DB) *UsageRepository { return &UsageRepository{db: db} }

func (r *UsageRepository) Insert(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO llm_usage (model, input_tokens, output_tokens, cost_usd, purpose, session_id)
VALUES (?,?,?,?,?,?);`
	_, err := r.db.ExecContext(ctx, q,
		rec.Model, rec.InputTokens, rec.OutputTokens, rec.CostUSD, rec.Purpose, nullString(rec.SessionID),
	)
	return err
}
