package mysql

import (
	"context"
	"database/sql"

	domain "github.com/mdlabs/atlas-api/internal/domain/analysis"
)

type LearningRepository struct{ db *sql.DB }

func NewLearningRepository(db *sql.DB) *LearningRepository { return &LearningRepository{db: db} }

func (r *LearningRepository) Insert(ctx context.Context, rec *domain.LearningRecord) error {
	const q = `
INSERT INTO llm_analyses
(analysis_id, session_id, llm_diagram_id, llm_fault_a, llm_fault_b,
 llm_confidence, llm_reasoning, llm_analysis, llm_modifiers, llm_tokens, matches_engine)
VALUES (?,?,?,?,?,?,?,?,?,?,?);`

	_, err := r.db.ExecContext(ctx, q,
		rec.AnalysisID, rec.SessionID, nullString(rec.LLMDiagramID),
		nullInt(rec.LLMFaultA), nullInt(rec.LLMFaultB),
		nullString(rec.LLMConfidence), rec.LLMReasoning, rec.LLMAnalysis,
		jsonArray(rec.LLMModifiers), rec.LLMTokens, rec.MatchesEngine,
	)
	return err
}
