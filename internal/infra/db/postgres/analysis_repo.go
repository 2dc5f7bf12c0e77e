package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	domain "github.com/mdlabs/atlas-api/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Insert append-only create; record sudah tervalidasi + tertruncate di service.
func (r *AnalysisRepository) Insert(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analyses
(id, created_at, input_text, input_type, has_pdf, has_image, has_video,
 pdf_text, ocr_text, video_env,
 diagram_id, diagram_title, category, subcategory, confidence, match_score, alt_diagrams,
 fault_a, fault_b, label_a, label_b, base_fault_a, base_fault_b,
 detected_mods, applied_mods, laws, analysis_text,
 llm_used, llm_response, session_id, user_agent, ip_hash)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,
        $11,$12,$13,$14,$15,$16,$17,
        $18,$19,$20,$21,$22,$23,
        $24,$25,$26,$27,
        $28,$29,$30,$31,$32);`

	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.CreatedAt, rec.InputText, rec.InputType, rec.HasPDF, rec.HasImage, rec.HasVideo,
		rec.PDFText, rec.OCRText, nullString(rec.VideoEnv),
		rec.DiagramID, rec.DiagramTitle, rec.Category, rec.Subcategory, rec.Confidence, rec.MatchScore, jsonArray(rec.AltDiagrams),
		rec.FaultA, rec.FaultB, rec.LabelA, rec.LabelB, nullInt(rec.BaseFaultA), nullInt(rec.BaseFaultB),
		jsonArray(rec.DetectedMods), jsonArray(rec.AppliedMods), jsonArray(rec.Laws), rec.AnalysisText,
		rec.LLMUsed, nullRaw(rec.LLMResponse), nullString(rec.SessionID), rec.UserAgent, rec.IPHash,
	)
	return err
}

const selectCols = `
id, created_at, input_text, input_type, has_pdf, has_image, has_video,
pdf_text, ocr_text, video_env,
diagram_id, diagram_title, category, subcategory, confidence, match_score, alt_diagrams,
fault_a, fault_b, label_a, label_b, base_fault_a, base_fault_b,
detected_mods, applied_mods, laws, analysis_text,
llm_used, llm_response, session_id, user_agent, ip_hash`

func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	q := `SELECT ` + selectCols + ` FROM analyses WHERE id=$1 LIMIT 1;`
	return scanRecord(r.db.QueryRowContext(ctx, q, id))
}

// LatestBySession: record terbaru untuk satu session (lookup enrichment).
func (r *AnalysisRepository) LatestBySession(ctx context.Context, sessionID string) (*domain.Record, error) {
	q := `SELECT ` + selectCols + ` FROM analyses WHERE session_id=$1 ORDER BY created_at DESC LIMIT 1;`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	return rec, err
}

// AttachEnrichment set flag + payload classifier; kolom hasil engine tidak ikut.
func (r *AnalysisRepository) AttachEnrichment(ctx context.Context, id domain.RecordID, payload json.RawMessage) error {
	const q = `UPDATE analyses SET llm_used=true, llm_response=$2 WHERE id=$1;`
	_, err := r.db.ExecContext(ctx, q, id, nullRaw(payload))
	return err
}

func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]domain.Summary, error) {
	const q = `
SELECT id, created_at, diagram_id, diagram_title, category,
       fault_a, fault_b, label_a, label_b, confidence, match_score
FROM analyses ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(
			&s.ID, &s.CreatedAt, &s.DiagramID, &s.DiagramTitle, &s.Category,
			&s.FaultA, &s.FaultB, &s.LabelA, &s.LabelB, &s.Confidence, &s.MatchScore,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses;`).Scan(&n)
	return n, err
}

func (r *AnalysisRepository) RecentDiagrams(ctx context.Context, limit int) ([]domain.DiagramRef, error) {
	const q = `SELECT diagram_id, category FROM analyses ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DiagramRef
	for rows.Next() {
		var ref domain.DiagramRef
		if err := rows.Scan(&ref.DiagramID, &ref.Category); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var videoEnv, sessionID sql.NullString
	var baseA, baseB sql.NullInt64
	var altDiagrams, detectedMods, appliedMods, laws, llmResponse []byte
	if err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.InputText, &rec.InputType, &rec.HasPDF, &rec.HasImage, &rec.HasVideo,
		&rec.PDFText, &rec.OCRText, &videoEnv,
		&rec.DiagramID, &rec.DiagramTitle, &rec.Category, &rec.Subcategory, &rec.Confidence, &rec.MatchScore, &altDiagrams,
		&rec.FaultA, &rec.FaultB, &rec.LabelA, &rec.LabelB, &baseA, &baseB,
		&detectedMods, &appliedMods, &laws, &rec.AnalysisText,
		&rec.LLMUsed, &llmResponse, &sessionID, &rec.UserAgent, &rec.IPHash,
	); err != nil {
		return nil, err
	}
	rec.VideoEnv = videoEnv.String
	rec.SessionID = sessionID.String
	rec.BaseFaultA = intPtr(baseA)
	rec.BaseFaultB = intPtr(baseB)
	rec.AltDiagrams = scanJSONArray(altDiagrams)
	rec.DetectedMods = scanJSONArray(detectedMods)
	rec.AppliedMods = scanJSONArray(appliedMods)
	rec.Laws = scanJSONArray(laws)
	if len(llmResponse) > 0 {
		rec.LLMResponse = json.RawMessage(llmResponse)
	}
	return &rec, nil
}
