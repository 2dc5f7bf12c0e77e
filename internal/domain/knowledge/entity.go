package knowledge

import (
	"context"
	"encoding/json"
	"strings"
)

// Category: kode klasifikasi AI Hub per tier.
type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// TrainingRow: satu entri video_training_data (dataset pembelajaran dari
// rekaman kecelakaan yang sudah dianotasi).
type TrainingRow struct {
	VideoName          string          `json:"video_name"`
	VideoDate          string          `json:"video_date,omitempty"`
	FilmingWay         string          `json:"filming_way,omitempty"`
	PointOfView        *int            `json:"point_of_view,omitempty"`
	RateA              *int            `json:"rate_a,omitempty"`
	RateB              *int            `json:"rate_b,omitempty"`
	AccidentObject     string          `json:"accident_object,omitempty"`
	AccidentPlace      string          `json:"accident_place,omitempty"`
	PlaceFeature       string          `json:"place_feature,omitempty"`
	VehicleAInfo       string          `json:"vehicle_a_info,omitempty"`
	VehicleBInfo       string          `json:"vehicle_b_info,omitempty"`
	AccidentType       string          `json:"accident_type,omitempty"`
	DamageLocation     string          `json:"damage_location,omitempty"`
	RelatedLaws        string          `json:"related_laws,omitempty"`
	ViolationOfLaw     string          `json:"violation_of_law,omitempty"`
	AdditionalElements string          `json:"additional_elements,omitempty"`
	ViolationFactor    string          `json:"violation_factor,omitempty"`
	Weather            string          `json:"weather,omitempty"`
	HasMP4             bool            `json:"has_mp4"`
	RawJSON            json.RawMessage `json:"raw_json,omitempty"`
}

// Precedent: putusan pengadilan dengan rasio kesalahan yang sudah dipetakan.
type Precedent struct {
	ID         string `json:"id"`
	CaseNumber string `json:"case_number"`
	CaseName   string `json:"case_name"`
	Court      string `json:"court"`
	Date       string `json:"date"`
	FaultRatio string `json:"fault_ratio"`
	FaultA     *int   `json:"fault_a,omitempty"`
	FaultB     *int   `json:"fault_b,omitempty"`
	Categories string `json:"categories,omitempty"`
	Keywords   string `json:"keywords,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// PrecedentQuery filter pencarian judikatur.
type PrecedentQuery struct {
	Keywords   string
	Categories string
	Court      string
	FaultMin   *int
	FaultMax   *int
	Limit      int
}

// MaxPrecedentLimit: batas baris hasil pencarian judikatur.
const MaxPrecedentLimit = 50

// SplitKeywords pecah input pencarian jadi term per kata/koma, buang term
// yang terlalu pendek.
func SplitKeywords(keywords string) []string {
	fields := strings.FieldsFunc(keywords, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// Repository port: semua view read-only kecuali UpsertTraining (bulk upload).
type Repository interface {
	Categories(ctx context.Context, tier string) ([]Category, error)
	// TrainingRates: baris dengan rate_a non-null, bahan agregasi statistik.
	TrainingRates(ctx context.Context) ([]TrainingRow, error)
	Similar(ctx context.Context, place, accidentType string, limit int) ([]TrainingRow, error)
	// ByObjectKeyword: substring match pada accident_object.
	ByObjectKeyword(ctx context.Context, keyword string, limit int) ([]TrainingRow, error)
	SearchPrecedents(ctx context.Context, q PrecedentQuery) ([]Precedent, error)
	// UpsertTraining: dedup berdasarkan video_name, balikin nama yang tersimpan.
	UpsertTraining(ctx context.Context, rows []TrainingRow) ([]string, error)
}
