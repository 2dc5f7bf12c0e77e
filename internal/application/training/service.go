package training

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mdlabs/atlas-api/internal/domain/archive"
	"github.com/mdlabs/atlas-api/internal/domain/knowledge"
	"github.com/mdlabs/atlas-api/internal/domain/validation"
)

// Service: bulk upload dataset video pembelajaran.
type Service struct {
	Repo    knowledge.Repository
	Archive archive.Store // optional, arsip payload mentah
}

// UploadRecord: satu entri payload. Format fleksibel: field bisa nested di
// bawah key "video" atau langsung flat.
type UploadRecord struct {
	Video *videoFields `json:"video"`
	videoFields
	Raw json.RawMessage `json:"-"`
}

type videoFields struct {
	VideoName           string `json:"video_name"`
	VideoDate           string `json:"video_date"`
	FilmingWay          string `json:"filming_way"`
	PointOfView         *int   `json:"video_point_of_view"`
	RateA               *int   `json:"accident_negligence_rateA"`
	RateB               *int   `json:"accident_negligence_rateB"`
	AccidentObject      string `json:"accident_object"`
	AccidentPlace       string `json:"accident_place"`
	PlaceFeature        string `json:"accident_place_feature"`
	VehicleAInfo        string `json:"vehicle_a_progress_info"`
	VehicleBInfo        string `json:"vehicle_b_progress_info"`
	AccidentType        string `json:"accident_type"`
	TrafficAccidentType string `json:"traffic_accident_type"`
	DamageLocation      string `json:"damage_location"`
	RelatedLaws         string `json:"related_laws"`
	ViolationOfLaw      string `json:"violation_of_law"`
	AdditionalElements  string `json:"additional_elements"`
	ViolationFactor     string `json:"violation_factor"`
	Weather             string `json:"weather"`
	HasMP4              bool   `json:"has_mp4"`
}

type UploadResult struct {
	Uploaded  int      `json:"uploaded"`
	TotalSent int      `json:"total_sent"`
	Names     []string `json:"names"`
}

// Upload map payload ke baris training dan upsert berdasarkan video_name.
func (s *Service) Upload(ctx context.Context, records []UploadRecord) (*UploadResult, error) {
	if len(records) == 0 {
		return nil, validation.Errorf("records[] required")
	}

	rows := make([]knowledge.TrainingRow, 0, len(records))
	for _, r := range records {
		v := r.videoFields
		if r.Video != nil {
			v = *r.Video
		}
		accType := v.AccidentType
		if accType == "" {
			accType = v.TrafficAccidentType
		}
		rows = append(rows, knowledge.TrainingRow{
			VideoName:          v.VideoName,
			VideoDate:          v.VideoDate,
			FilmingWay:         v.FilmingWay,
			PointOfView:        v.PointOfView,
			RateA:              v.RateA,
			RateB:              v.RateB,
			AccidentObject:     v.AccidentObject,
			AccidentPlace:      v.AccidentPlace,
			PlaceFeature:       v.PlaceFeature,
			VehicleAInfo:       v.VehicleAInfo,
			VehicleBInfo:       v.VehicleBInfo,
			AccidentType:       accType,
			DamageLocation:     v.DamageLocation,
			RelatedLaws:        v.RelatedLaws,
			ViolationOfLaw:     v.ViolationOfLaw,
			AdditionalElements: v.AdditionalElements,
			ViolationFactor:    v.ViolationFactor,
			Weather:            v.Weather,
			HasMP4:             v.HasMP4,
			RawJSON:            r.Raw,
		})
	}

	names, err := s.Repo.UpsertTraining(ctx, rows)
	if err != nil {
		return nil, err
	}

	go s.archivePayload(records)

	return &UploadResult{
		Uploaded:  len(names),
		TotalSent: len(records),
		Names:     names,
	}, nil
}

func (s *Service) archivePayload(records []UploadRecord) {
	if s.Archive == nil {
		return
	}
	body, err := json.Marshal(records)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	key := "training-uploads/" + time.Now().UTC().Format("20060102T150405") + ".json"
	if _, err := s.Archive.Put(ctx, key, body, "application/json"); err != nil {
		log.Printf("training upload archive failed (ignored): %v", err)
	}
}
