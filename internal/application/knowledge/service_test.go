package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlabs/atlas-api/internal/domain/accuracy"
	"github.com/mdlabs/atlas-api/internal/domain/analysis"
	"github.com/mdlabs/atlas-api/internal/domain/feedback"
	"github.com/mdlabs/atlas-api/internal/domain/knowledge"
)

type stubKnowledge struct {
	knowledge.Repository
	rows    []knowledge.TrainingRow
	gotTier string
	gotQ    knowledge.PrecedentQuery
}

func (s *stubKnowledge) Categories(ctx context.Context, tier string) ([]knowledge.Category, error) {
	s.gotTier = tier
	return nil, nil
}

func (s *stubKnowledge) TrainingRates(ctx context.Context) ([]knowledge.TrainingRow, error) {
	return s.rows, nil
}

func (s *stubKnowledge) SearchPrecedents(ctx context.Context, q knowledge.PrecedentQuery) ([]knowledge.Precedent, error) {
	s.gotQ = q
	return nil, nil
}

type stubAnalyses struct {
	analysis.Repository
	count int
	refs  []analysis.DiagramRef
}

func (s *stubAnalyses) Count(ctx context.Context) (int, error) { return s.count, nil }
func (s *stubAnalyses) RecentDiagrams(ctx context.Context, limit int) ([]analysis.DiagramRef, error) {
	return s.refs, nil
}

type stubFeedback struct {
	feedback.Repository
	count int
}

func (s *stubFeedback) Count(ctx context.Context) (int, error) { return s.count, nil }

type stubAccuracy struct {
	accuracy.Repository
}

func intp(n int) *int { return &n }

func row(place, typ, violation string, a, b *int) knowledge.TrainingRow {
	return knowledge.TrainingRow{
		AccidentPlace:  place,
		AccidentType:   typ,
		ViolationOfLaw: violation,
		RateA:          a,
		RateB:          b,
	}
}

func TestOverviewStats(t *testing.T) {
	refs := []analysis.DiagramRef{
		{DiagramID: "252"}, {DiagramID: "252"}, {DiagramID: "252"},
		{DiagramID: "301"},
		{DiagramID: "100"},
	}
	svc := &Service{
		Repo:     &stubKnowledge{},
		Accuracy: &stubAccuracy{},
		Analyses: &stubAnalyses{count: 42, refs: refs},
		Feedback: &stubFeedback{count: 7},
	}

	ov, err := svc.OverviewStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, ov.TotalAnalyses)
	assert.Equal(t, 7, ov.TotalFeedback)
	// urut count menurun, tie di-break pakai id naik
	require.Len(t, ov.TopDiagrams, 3)
	assert.Equal(t, DiagramCount{ID: "252", Count: 3}, ov.TopDiagrams[0])
	assert.Equal(t, DiagramCount{ID: "100", Count: 1}, ov.TopDiagrams[1])
	assert.Equal(t, DiagramCount{ID: "301", Count: 1}, ov.TopDiagrams[2])
}

func TestCategoriesDefaultTier(t *testing.T) {
	repo := &stubKnowledge{}
	svc := &Service{Repo: repo}

	_, err := svc.Categories(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "1st", repo.gotTier)

	_, err = svc.Categories(context.Background(), "2nd")
	require.NoError(t, err)
	assert.Equal(t, "2nd", repo.gotTier)
}

func TestTrainingStatsGrouping(t *testing.T) {
	repo := &stubKnowledge{rows: []knowledge.TrainingRow{
		row("교차로", "직각충돌", "", intp(70), intp(30)),
		row("교차로", "직각충돌", "", intp(50), intp(50)),
		row("횡단보도", "보행자", "", intp(100), intp(0)),
		row("교차로", "직각충돌", "", nil, nil), // rate kosong di-skip dari grouping
	}}
	svc := &Service{Repo: repo}

	stats, total, err := svc.TrainingStats(context.Background())
	require.NoError(t, err)

	// total = jumlah baris dataset, termasuk yang rate-nya kosong
	assert.Equal(t, 4, total)
	require.Contains(t, stats, "교차로_직각충돌")
	assert.Equal(t, 2, stats["교차로_직각충돌"].Count)
	assert.Equal(t, 60, stats["교차로_직각충돌"].AvgA)
	assert.Equal(t, 40, stats["교차로_직각충돌"].AvgB)
	assert.Equal(t, 100, stats["횡단보도_보행자"].AvgA)
}

func TestViolationStats(t *testing.T) {
	repo := &stubKnowledge{rows: []knowledge.TrainingRow{
		row("", "", "신호위반", intp(80), nil),
		row("", "", "신호위반", intp(60), nil),
		row("", "", "안전거리미확보", intp(100), nil),
		row("", "", "  ", intp(50), nil), // violation kosong di-skip
		row("", "", "과속", nil, nil),    // rate kosong di-skip
	}}
	svc := &Service{Repo: repo}

	out, err := svc.ViolationStats(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, ViolationStat{Violation: "신호위반", Count: 2, AvgA: 70}, out[0])
	assert.Equal(t, ViolationStat{Violation: "안전거리미확보", Count: 1, AvgA: 100}, out[1])
}

func TestPrecedentsLimitClamp(t *testing.T) {
	repo := &stubKnowledge{}
	svc := &Service{Repo: repo}

	_, err := svc.Precedents(context.Background(), knowledge.PrecedentQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.gotQ.Limit)

	_, err = svc.Precedents(context.Background(), knowledge.PrecedentQuery{Limit: 999})
	require.NoError(t, err)
	assert.Equal(t, knowledge.MaxPrecedentLimit, repo.gotQ.Limit)

	_, err = svc.Precedents(context.Background(), knowledge.PrecedentQuery{Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, repo.gotQ.Limit)
}
