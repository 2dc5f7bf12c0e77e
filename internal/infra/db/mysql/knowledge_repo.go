package mysql

import (
	"context"
	"database/sql"
	"strings"

	domain "github.com/mdlabs/atlas-api/internal/domain/knowledge"
)

type KnowledgeRepository struct{ db *sql.DB }

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository { return &KnowledgeRepository{db: db} }

func (r *KnowledgeRepository) Categories(ctx context.Context, tier string) ([]domain.Category, error) {
	const q = `SELECT code, name, tier FROM aihub_categories WHERE tier=? ORDER BY code;`
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

func (r *KnowledgeRepository) TrainingRates(ctx context.Context) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + ` FROM video_training_data WHERE rate_a IS NOT NULL;`
	return r.listTraining(ctx, q)
}

func (r *KnowledgeRepository) Similar(ctx context.Context, place, accidentType string, limit int) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + `
FROM video_training_data
WHERE accident_place=? AND accident_type=? AND rate_a IS NOT NULL
LIMIT ?;`
	return r.listTraining(ctx, q, place, accidentType, limit)
}

func (r *KnowledgeRepository) ByObjectKeyword(ctx context.Context, keyword string, limit int) ([]domain.TrainingRow, error) {
	q := `SELECT ` + trainingCols + `
FROM video_training_data
WHERE accident_object LIKE ? AND rate_a IS NOT NULL
LIMIT ?;`
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

func (r *KnowledgeRepository) SearchPrecedents(ctx context.Context, pq domain.PrecedentQuery) ([]domain.Precedent, error) {
	query := `
SELECT id, case_number, case_name, court, date, COALESCE(fault_ratio,''),
       fault_a, fault_b, COALESCE(categories,''), COALESCE(keywords,''), COALESCE(summary,'')
FROM precedents
WHERE fault_ratio IS NOT NULL`
	var args []any

	if words := domain.SplitKeywords(pq.Keywords); len(words) > 0 {
		var ors []string
		for _, w := range words {
			ors = append(ors, "keywords LIKE ?")
			args = append(args, "%"+escapeLikePattern(w)+"%")
		}
		query += " AND (" + strings.Join(ors, " OR ") + ")"
	}
	if pq.Categories != "" {
		query += " AND categories LIKE ?"
		args = append(args, "%"+escapeLikePattern(pq.Categories)+"%")
	}
	if pq.Court != "" {
		query += " AND court LIKE ?"
		args = append(args, "%"+escapeLikePattern(pq.Court)+"%")
	}
	if pq.FaultMin != nil {
		query += " AND fault_a >= ?"
		args = append(args, *pq.FaultMin)
	}
	if pq.FaultMax != nil {
		query += " AND fault_a <= ?"
		args = append(args, *pq.FaultMax)
	}
	query += " ORDER BY relevance_score DESC LIMIT ?"
	args = append(args, pq.Limit)

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

func (r *KnowledgeRepository) UpsertTraining(ctx context.Context, trs []domain.TrainingRow) ([]string, error) {
	const q = `
INSERT INTO video_training_data
(video_name, video_date, filming_way, point_of_view, rate_a, rate_b,
 accident_object, accident_place, place_feature, vehicle_a_info, vehicle_b_info,
 accident_type, damage_location, related_laws, violation_of_law,
 additional_elements, violation_factor, weather, has_mp4, raw_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 video_date=VALUES(video_date), filming_way=VALUES(filming_way),
 point_of_view=VALUES(point_of_view), rate_a=VALUES(rate_a), rate_b=VALUES(rate_b),
 accident_object=VALUES(accident_object), accident_place=VALUES(accident_place),
 place_feature=VALUES(place_feature), vehicle_a_info=VALUES(vehicle_a_info),
 vehicle_b_info=VALUES(vehicle_b_info), accident_type=VALUES(accident_type),
 damage_location=VALUES(damage_location), related_laws=VALUES(related_laws),
 violation_of_law=VALUES(violation_of_law), additional_elements=VALUES(additional_elements),
 violation_factor=VALUES(violation_factor), weather=VALUES(weather),
 has_mp4=VALUES(has_mp4), raw_json=VALUES(raw_json);`

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
