package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domain "github.com/mdlabs/atlas-api/internal/domain/knowledge"
)

type KnowledgeRepository struct{ db *sql.DB }

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository { return &KnowledgeRepository{db: db} }

func (r *KnowledgeRepository) Categories(ctx context.Context, tier string) ([]domain.Category, error) {
	const q = `SELECT code, name, tier FROM aihub_categories WHERE tier=$1 ORDER BY code;`
	rows, err := r.db.QueryContext(ctx, q, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Code, &c.Name, &c.Tier); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const trainingCols = `
video_name, COALESCE(video_date,''), COALESCE(filming_way,''), point_of_view,
rate_a, rate_b, COALESCE(accident_object,''), COALESCE(accident_place,''),
COALESCE(place_feature,''), COALESCE(vehicle_a_info,''), COALESCE(vehicle_b_info,''),
COALESCE(accident_type,''), COALESCE(damage_location,''), COALESCE(related_laws,''),
COALESCE(violation_of_law,''), COALESCE(additional_elements,''), COALESCE(violation_factor,''),
COALESCE(weather,''), has_mp4`

// TrainingRates: baris dengan rate terisi, bahan group-by di service.
func (r *KnowledgeRepository) TrainingRates(ctx context.Context) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + ` FROM video_training_data WHERE rate_a IS NOT NULL;`
	return r.listTraining(ctx, q)
}

func (r *KnowledgeRepository) Similar(ctx context.Context, place, accidentType string, limit int) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + `
FROM video_training_data
WHERE accident_place=$1 AND accident_type=$2 AND rate_a IS NOT NULL
LIMIT $3;`
	return r.listTraining(ctx, q, place, accidentType, limit)
}

func (r *KnowledgeRepository) ByObjectKeyword(ctx context.Context, keyword string, limit int) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + `
FROM video_training_data
WHERE accident_object ILIKE $1 AND rate_a IS NOT NULL
LIMIT $2;`
	return r.listTraining(ctx, q, "%"+escapeLikePattern(keyword)+"%", limit)
}

func (r *KnowledgeRepository) listTraining(ctx context.Context, q string, args ...any) ([]domain.TrainingRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrainingRow
	for rows.Next() {
		var t domain.TrainingRow
		var pov, rateA, rateB sql.NullInt64
		if err := rows.Scan(
			&t.VideoName, &t.VideoDate, &t.FilmingWay, &pov,
			&rateA, &rateB, &t.AccidentObject, &t.AccidentPlace,
			&t.PlaceFeature, &t.VehicleAInfo, &t.VehicleBInfo,
			&t.AccidentType, &t.DamageLocation, &t.RelatedLaws,
			&t.ViolationOfLaw, &t.AdditionalElements, &t.ViolationFactor,
			&t.Weather, &t.HasMP4,
		); err != nil {
			return nil, err
		}
		t.PointOfView = intPtr(pov)
		t.RateA = intPtr(rateA)
		t.RateB = intPtr(rateB)
		out = append(out, t)
	}
	return out, rows.Err()
}

// SearchPrecedents: filter dinamis, semua lewat placeholder.
func (r *KnowledgeRepository) SearchPrecedents(ctx context.Context, pq domain.PrecedentQuery) ([]domain.Precedent, error) {
	query := `
SELECT id, case_number, case_name, court, date, COALESCE(fault_ratio,''),
       fault_a, fault_b, COALESCE(categories,''), COALESCE(keywords,''), COALESCE(summary,'')
FROM precedents
WHERE fault_ratio IS NOT NULL`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if words := domain.SplitKeywords(pq.Keywords); len(words) > 0 {
		var ors []string
		for _, w := range words {
			ors = append(ors, "keywords ILIKE "+arg("%"+escapeLikePattern(w)+"%"))
		}
		query += " AND (" + strings.Join(ors, " OR ") + ")"
	}
	if pq.Categories != "" {
		query += " AND categories ILIKE " + arg("%"+escapeLikePattern(pq.Categories)+"%")
	}
	if pq.Court != "" {
		query += " AND court ILIKE " + arg("%"+escapeLikePattern(pq.Court)+"%")
	}
	if pq.FaultMin != nil {
		query += " AND fault_a >= " + arg(*pq.FaultMin)
	}
	if pq.FaultMax != nil {
		query += " AND fault_a <= " + arg(*pq.FaultMax)
	}
	query += " ORDER BY relevance_score DESC LIMIT " + arg(pq.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Precedent
	for rows.Next() {
		var p domain.Precedent
		var faultA, faultB sql.NullInt64
		if err := rows.Scan(
			&p.ID, &p.CaseNumber, &p.CaseName, &p.Court, &p.Date, &p.FaultRatio,
			&faultA, &faultB, &p.Categories, &p.Keywords, &p.Summary,
		); err != nil {
			return nil, err
		}
		p.FaultA = intPtr(faultA)
		p.FaultB = intPtr(faultB)
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertTraining: dedup di video_name, balikin nama yang tersimpan.
func (r *KnowledgeRepository) UpsertTraining(ctx context.Context, trs []domain.TrainingRow) ([]string, error) {
	const q = `
INSERT INTO video_training_data
(video_name, video_date, filming_way, point_of_view, rate_a, rate_b,
 accident_object, accident_place, place_feature, vehicle_a_info, vehicle_b_info,
 accident_type, damage_location, related_laws, violation_of_law,
 additional_elements, violation_factor, weather, has_mp4, raw_json)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (video_name) DO UPDATE SET
 video_date=EXCLUDED.video_date, filming_way=EXCLUDED.filming_way,
 point_of_view=EXCLUDED.point_of_view, rate_a=EXCLUDED.rate_a, rate_b=EXCLUDED.rate_b,
 accident_object=EXCLUDED.accident_object, accident_place=EXCLUDED.accident_place,
 place_feature=EXCLUDED.place_feature, vehicle_a_info=EXCLUDED.vehicle_a_info,
 vehicle_b_info=EXCLUDED.vehicle_b_info, accident_type=EXCLUDED.accident_type,
 damage_location=EXCLUDED.damage_location, related_laws=EXCLUDED.related_laws,
 violation_of_law=EXCLUDED.violation_of_law, additional_elements=EXCLUDED.additional_elements,
 violation_factor=EXCLUDED.violation_factor, weather=EXCLUDED.weather,
 has_mp4=EXCLUDED.has_mp4, raw_json=EXCLUDED.raw_json;`

	var names []string
	for _, t := range trs {
		if strings.TrimSpace(t.VideoName) == "" {
			continue
		}
		_, err := r.db.ExecContext(ctx, q,
			t.VideoName, nullString(t.VideoDate), nullString(t.FilmingWay), nullInt(t.PointOfView),
			nullInt(t.RateA), nullInt(t.RateB),
			nullString(t.AccidentObject), nullString(t.AccidentPlace), nullString(t.PlaceFeature),
			nullString(t.VehicleAInfo), nullString(t.VehicleBInfo),
			nullString(t.AccidentType), nullString(t.DamageLocation), nullString(t.RelatedLaws),
			nullString(t.ViolationOfLaw), nullString(t.AdditionalElements), nullString(t.ViolationFactor),
			nullString(t.Weather), t.HasMP4, nullRaw(t.RawJSON),
		)
		if err != nil {
			return names, err
		}
		names = append(names, t.VideoName)
	}
	return names, nil
}

// escapeLikePattern escape wildcard LIKE di input user
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
