package training

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlabs/atlas-api/internal/domain/knowledge"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
)

type stubTrainingRepo struct {
	knowledge.Repository
	gotRows []knowledge.TrainingRow
}

func (s *stubTrainingRepo) UpsertTraining(ctx context.Context, rows []knowledge.TrainingRow) ([]string, error) {
	s.gotRows = rows
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.VideoName != "" {
			names = append(names, r.VideoName)
		}
	}
	return names, nil
}

func decodeRecord(t *testing.T, raw string) UploadRecord {
	t.Helper()
	var rec UploadRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	rec.Raw = json.RawMessage(raw)
	return rec
}

func TestUploadRequiresRecords(t *testing.T) {
	svc := &Service{Repo: &stubTrainingRepo{}}

	_, err := svc.Upload(context.Background(), nil)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "records[] required", verr.Message)
}

func TestUploadFlatRecord(t *testing.T) {
	repo := &stubTrainingRepo{}
	svc := &Service{Repo: repo}

	rec := decodeRecord(t, `{
		"video_name": "clip-001.mp4",
		"accident_negligence_rateA": 70,
		"accident_negligence_rateB": 30,
		"accident_place": "교차로",
		"traffic_accident_type": "직각충돌"
	}`)

	res, err := svc.Upload(context.Background(), []UploadRecord{rec})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, res.TotalSent)
	assert.Equal(t, []string{"clip-001.mp4"}, res.Names)

	require.Len(t, repo.gotRows, 1)
	got := repo.gotRows[0]
	assert.Equal(t, "clip-001.mp4", got.VideoName)
	require.NotNil(t, got.RateA)
	assert.Equal(t, 70, *got.RateA)
	// accident_type kosong → fallback ke traffic_accident_type
	assert.Equal(t, "직각충돌", got.AccidentType)
	assert.JSONEq(t, string(rec.Raw), string(got.RawJSON))
}

func TestUploadNestedVideo(t *testing.T) {
	repo := &stubTrainingRepo{}
	svc := &Service{Repo: repo}

	rec := decodeRecord(t, `{
		"video": {
			"video_name": "nested.mp4",
			"accident_type": "추돌",
			"accident_negligence_rateA": 100,
			"accident_negligence_rateB": 0
		}
	}`)

	res, err := svc.Upload(context.Background(), []UploadRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, []string{"nested.mp4"}, res.Names)

	got := repo.gotRows[0]
	assert.Equal(t, "nested.mp4", got.VideoName)
	assert.Equal(t, "추돌", got.AccidentType)
}

func TestUploadCountsSkippedNames(t *testing.T) {
	repo := &stubTrainingRepo{}
	svc := &Service{Repo: repo}

	recs := []UploadRecord{
		decodeRecord(t, `{"video_name": "a.mp4"}`),
		decodeRecord(t, `{"weather": "비"}`), // tanpa video_name, store skip
	}

	res, err := svc.Upload(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalSent)
	assert.Equal(t, 1, res.Uploaded)
}
