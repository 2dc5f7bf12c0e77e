package feedback

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mdlabs/atlas-api/internal/domain/accuracy"
	"github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/feedback"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// Service implements use-case Feedback Processor. Satu-satunya pemicu update
// Accuracy Aggregator di sistem ini.
type Service struct {
	Repo     feedback.Repository
	Analyses analysis.Repository
	Accuracy accuracy.Repository
	Clock    Clock
}

type SubmitCommand struct {
	AnalysisID     string
	IsCorrect      *bool
	CorrectDiagram string
	CorrectFaultA  *int
	CorrectFaultB  *int
	Comment        string
	ExpertLevel    string
}

// Submit simpan koreksi manusia atas sebuah analysis record. Verdict bisa
// eksplisit dari reviewer, atau diturunkan dari toleransi fault split kalau
// reviewer cuma mengisi koreksi (varian session-linked). nil tetap nil; tidak
// pernah ditolak, disimpan sebagai unknown.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (string, error) {
	if cmd.AnalysisID == "" {
		return "", validation.Errorf("analysis_id 필수")
	}

	rec := &feedback.Record{
		ID:             uuid.NewString(),
		AnalysisID:     cmd.AnalysisID,
		IsCorrect:      cmd.IsCorrect,
		CorrectDiagram: cmd.CorrectDiagram,
		CorrectFaultA:  cmd.CorrectFaultA,
		CorrectFaultB:  cmd.CorrectFaultB,
		Comment:        analysis.Truncate(cmd.Comment, feedback.MaxComment),
		ExpertLevel:    cmd.ExpertLevel,
		CreatedAt:      s.Clock.Now(),
	}
	if rec.ExpertLevel == "" {
		rec.ExpertLevel = feedback.DefaultExpertLevel
	}

	// Varian session-linked: verdict diturunkan dari |predicted − actual| ≤ 10.
	// Butuh record analisisnya untuk fault prediksi + diagram id.
	var diagramID string
	if cmd.IsCorrect == nil && cmd.CorrectFaultA != nil {
		if a, err := s.Analyses.Get(ctx, analysis.RecordID(cmd.AnalysisID)); err == nil {
			derived := feedback.DerivedCorrect(a.FaultA, *cmd.CorrectFaultA)
			rec.IsCorrect = &derived
			diagramID = a.DiagramID
		} else {
			log.Printf("feedback: analysis lookup failed, verdict stays unknown: %v", err)
		}
	}

	if err := s.Repo.Insert(ctx, rec); err != nil {
		return "", err
	}

	// Update agregat hanya untuk feedback yang membawa verdict. Increment-nya
	// satu statement atomik di store; gagal di sini dilog, bukan digagalkan;
	// feedback-nya sendiri sudah tersimpan dan retry caller bakal duplikat.
	if rec.IsCorrect != nil {
		if diagramID == "" {
			a, err := s.Analyses.Get(ctx, analysis.RecordID(cmd.AnalysisID))
			if err != nil {
				log.Printf("feedback: analysis lookup for accuracy failed: %v", err)
				return rec.ID, nil
			}
			diagramID = a.DiagramID
		}
		if err := s.Accuracy.Record(ctx, diagramID, *rec.IsCorrect); err != nil {
			log.Printf("feedback: accuracy update failed for diagram %s: %v", diagramID, err)
		}
	}

	return rec.ID, nil
}
