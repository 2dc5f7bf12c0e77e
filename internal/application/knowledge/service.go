package knowledge

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/mdlabs/atlas-api/internal/domain/accuracy"
	"github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/feedback"
	"github.com/mdlabs/atlas-api/internal/domain/knowledge"
)

// Row caps per view, biar ukuran respons kebatas.
const (
	overviewWindow  = 100
	topDiagramCount = 10
	diagramStatsCap = 50
	recentCap       = 20
	similarCap      = 10
	objectCap       = 20
	accuracyCap     = 100
)

// Keyword accident_object untuk view hazard khusus.
const (
	motorcycleKeyword = "이륜차"
	autonomousKeyword = "자율주행"
)

// Service: view read-only di atas dataset referensi + agregat. Stateless,
// idempotent, tiap view dibatasi row cap.
type Service struct {
	Repo     knowledge.Repository
	Accuracy accuracy.Repository
	Analyses analysis.Repository
	Feedback feedback.Repository
}

// ===== statistik =====

type DiagramCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type Overview struct {
	TotalAnalyses int            `json:"total_analyses"`
	TotalFeedback int            `json:"total_feedback"`
	TopDiagrams   []DiagramCount `json:"top_diagrams"`
}

// OverviewStats: total + frekuensi diagram atas 100 analisis terakhir.
func (s *Service) OverviewStats(ctx context.Context) (*Overview, error) {
	totalAnalyses, err := s.Analyses.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalFeedback, err := s.Feedback.Count(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.Analyses.RecentDiagrams(ctx, overviewWindow)
	if err != nil {
		return nil, err
	}

	freq := map[string]int{}
	for _, r := range refs {
		freq[r.DiagramID]++
	}
	top := make([]DiagramCount, 0, len(freq))
	for id, count := range freq {
		top = append(top, DiagramCount{ID: id, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > topDiagramCount {
		top = top[:topDiagramCount]
	}

	return &Overview{
		TotalAnalyses: totalAnalyses,
		TotalFeedback: totalFeedback,
		TopDiagrams:   top,
	}, nil
}

// DiagramStats: baris akurasi per diagram, urut jumlah feedback menurun.
func (s *Service) DiagramStats(ctx context.Context) ([]accuracy.Row, error) {
	return s.Accuracy.ByTotal(ctx, diagramStatsCap)
}

// Recent: daftar analisis terbaru. limit ≤ 0 pakai default.
func (s *Service) Recent(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if limit <= 0 {
		limit = recentCap
	}
	return s.Analyses.Recent(ctx, limit)
}

// ===== knowledge views =====

func (s *Service) Categories(ctx context.Context, tier string) ([]knowledge.Category, error) {
	if tier == "" {
		tier = "1st"
	}
	return s.Repo.Categories(ctx, tier)
}

type PlaceStat struct {
	Count int `json:"count"`
	AvgA  int `json:"avg_a"`
	AvgB  int `json:"avg_b"`
}

// TrainingStats group dataset video per (tempat, tipe kecelakaan) dan
// rata-ratakan fault split-nya. Grouping di sini, bukan di store.
func (s *Service) TrainingStats(ctx context.Context) (map[string]*PlaceStat, int, error) {
	rows, err := s.Repo.TrainingRates(ctx)
	if err != nil {
		return nil, 0, err
	}
	stats := map[string]*PlaceStat{}
	sums := map[string][2]int{}
	for _, r := range rows {
		if r.RateA == nil || r.RateB == nil {
			continue
		}
		key := r.AccidentPlace + "_" + r.AccidentType
		st, ok := stats[key]
		if !ok {
			st = &PlaceStat{}
			stats[key] = st
		}
		st.Count++
		sum := sums[key]
		sum[0] += *r.RateA
		sum[1] += *r.RateB
		sums[key] = sum
	}
	for key, st := range stats {
		sum := sums[key]
		st.AvgA = int(math.Round(float64(sum[0]) / float64(st.Count)))
		st.AvgB = int(math.Round(float64(sum[1]) / float64(st.Count)))
	}
	return stats, len(rows), nil
}

// AccuracyRows: leaderboard akurasi per diagram, urut rate menurun.
func (s *Service) AccuracyRows(ctx context.Context) ([]accuracy.Row, error) {
	return s.Accuracy.Top(ctx, accuracyCap)
}

// Similar: kasus serupa berdasarkan tempat + tipe kecelakaan.
func (s *Service) Similar(ctx context.Context, place, accidentType string) ([]knowledge.TrainingRow, error) {
	return s.Repo.Similar(ctx, place, accidentType, similarCap)
}

type ViolationStat struct {
	Violation string `json:"violation"`
	Count     int    `json:"count"`
	AvgA      int    `json:"avg_a"`
}

// ViolationStats group per jenis pelanggaran hukum yang tercatat.
func (s *Service) ViolationStats(ctx context.Context) ([]ViolationStat, error) {
	rows, err := s.Repo.TrainingRates(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	sums := map[string]int{}
	for _, r := range rows {
		v := strings.TrimSpace(r.ViolationOfLaw)
		if v == "" || r.RateA == nil {
			continue
		}
		counts[v]++
		sums[v] += *r.RateA
	}
	out := make([]ViolationStat, 0, len(counts))
	for v, c := range counts {
		out = append(out, ViolationStat{
			Violation: v,
			Count:     c,
			AvgA:      int(math.Round(float64(sums[v]) / float64(c))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Violation < out[j].Violation
	})
	return out, nil
}

// Motorcycle: subset dataset dengan objek 이륜차.
func (s *Service) Motorcycle(ctx context.Context) ([]knowledge.TrainingRow, error) {
	return s.Repo.ByObjectKeyword(ctx, motorcycleKeyword, objectCap)
}

// Autonomous: subset dataset dengan objek 자율주행.
func (s *Service) Autonomous(ctx context.Context) ([]knowledge.TrainingRow, error) {
	return s.Repo.ByObjectKeyword(ctx, autonomousKeyword, objectCap)
}

// Precedents: pencarian judikatur dengan filter keyword/kategori/pengadilan/
// rentang fault. Limit di-clamp ke 50.
func (s *Service) Precedents(ctx context.Context, q knowledge.PrecedentQuery) ([]knowledge.Precedent, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > knowledge.MaxPrecedentLimit {
		q.Limit = knowledge.MaxPrecedentLimit
	}
	return s.Repo.SearchPrecedents(ctx, q)
}
