package analysis

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrSessionNotFound: tidak ada record untuk session yang diminta saat enrich.
var ErrSessionNotFound = errors.New("no analysis record for session")

// Repository port (interface untuk persistence)
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id RecordID) (*Record, error)
	// LatestBySession returns the most recently created record for a session.
	LatestBySession(ctx context.Context, sessionID string) (*Record, error)
	AttachEnrichment(ctx context.Context, id RecordID, payload json.RawMessage) error
	Recent(ctx context.Context, limit int) ([]Summary, error)
	Count(ctx context.Context) (int, error)
	RecentDiagrams(ctx context.Context, limit int) ([]DiagramRef, error)
}

// LearningRepository port untuk baris llm_analyses (best-effort)
type LearningRepository interface {
	Insert(ctx context.Context, rec *LearningRecord) error
}
