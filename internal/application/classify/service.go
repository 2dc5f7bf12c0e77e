package classify

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mdlabs/atlas-api/internal/domain/archive"
	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	"github.com/mdlabs/atlas-api/internal/domain/usage"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
)

// Batas panjang narasi yang diterima.
const (
	MinTextLen = 5
	MaxTextLen = 10000
)

// Service implements use-case Classification Coordinator.
// Safe untuk dipakai concurrent.
type Service struct {
	Client  classifier.Client
	Usage   usage.Repository // optional, metering best-effort
	Archive archive.Store    // optional, arsip balasan yang gagal decode
}

// Classify: narasi → diagram match + fault split dari classifier eksternal.
// Usage selalu dikembalikan, juga saat decode gagal, supaya metering jalan
// terlepas dari sukses-tidaknya klasifikasi.
func (s *Service) Classify(ctx context.Context, text, diagramList, sessionID string) (classifier.Result, classifier.Usage, error) {
	n := utf8.RuneCountInString(text)
	if n < MinTextLen {
		return classifier.Result{}, classifier.Usage{}, validation.Errorf("텍스트가 너무 짧습니다 (5자 이상)")
	}
	if n > MaxTextLen {
		return classifier.Result{}, classifier.Usage{}, validation.Errorf("텍스트가 너무 깁니다 (10,000자 이하)")
	}

	raw, u, err := s.Client.MatchDiagram(ctx, text, diagramList)
	if err != nil {
		return classifier.Result{}, u, err
	}

	go s.recordUsage(u, usage.PurposeMatch, sessionID)

	res := ParseReply(raw)
	if res.ParseFailed() {
		go s.archiveRaw(sessionID, raw)
	}
	return res, u, nil
}

// Report: mode "report", teks opini dari analisis yang sudah dihitung.
func (s *Service) Report(ctx context.Context, in classifier.ReportInput, sessionID string) (string, classifier.Usage, error) {
	text, u, err := s.Client.GenerateReport(ctx, in)
	if err != nil {
		return "", u, err
	}
	go s.recordUsage(u, usage.PurposeReport, sessionID)
	return text, u, nil
}

// recordUsage fire-and-forget: gagal cuma dilog, tidak pernah di-retry dan
// tidak pernah mempengaruhi hasil klasifikasi.
func (s *Service) recordUsage(u classifier.Usage, purpose, sessionID string) {
	if s.Usage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec := &usage.Record{
		Model:        u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CostUSD:      u.CostUSD(),
		Purpose:      purpose,
		SessionID:    sessionID,
	}
	if err := s.Usage.Insert(ctx, rec); err != nil {
		log.Printf("llm usage insert failed (ignored): %v", err)
	}
}

func (s *Service) archiveRaw(sessionID string, raw string) {
	if s.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	key := "raw-replies/" + time.Now().UTC().Format("20060102T150405") + "-" + sessionID + ".txt"
	if _, err := s.Archive.Put(ctx, key, []byte(raw), "text/plain; charset=utf-8"); err != nil {
		log.Printf("raw reply archive failed (ignored): %v", err)
	}
}

var fenceRe = regexp.MustCompile("```json\\s*|```\\s*")

// StripFences buang bungkus code-fence markdown dari balasan model.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// ParseReply decode balasan classifier secara defensif: fence dibuang dulu,
// lalu JSON decode. Gagal decode menghasilkan sentinel ParseFailed yang
// membawa teks mentah, bukan error.
func ParseReply(raw string) classifier.Result {
	clean := StripFences(raw)
	var m classifier.Match
	if err := json.Unmarshal([]byte(clean), &m); err != nil {
		return classifier.Result{Raw: raw}
	}
	return classifier.Result{Match: &m}
}
