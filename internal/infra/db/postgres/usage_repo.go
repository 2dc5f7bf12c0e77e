package postgres

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/usage"
)

// UsageRepository: llm_usage, write-once telemetri.
type UsageRepository struct{ db *sql.DB }

func NewUsageRepository(db *sql.DB) *UsageRepository { return &UsageRepository{db: db} }

func (r *UsageRepository) Insert(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO llm_usage (model, input_tokens, output_tokens, cost_usd, purpose, session_id)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := r.db.ExecContext(ctx, q,
		rec.Model, rec.InputTokens, rec.OutputTokens, rec.CostUSD, rec.Purpose, nullString(rec.SessionID),
	)
	return err
}
