package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubarchiv/ingest/internal/domain/person"
	qb "github.com/clubarchiv/ingest/internal/platform/querybuilder"
)

// PersonRepository backs players, coaches and referees. The three kinds
// share the key rule and column layout but live in separate tables.
type PersonRepository struct {
	db *sqlx.DB
}

func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func tableFor(kind person.Kind) string {
	switch kind {
	case person.KindCoach:
		return "coaches"
	case person.KindReferee:
		return "referees"
	default:
		return "players"
	}
}

func (r *PersonRepository) FindByKey(ctx context.Context, kind person.Kind, key string) (person.Person, bool, error) {
	query, args, err := qb.Select("*").From(tableFor(kind)).
		Where(qb.Eq("norm_key", key)).
		ToSQL()
	if err != nil {
		return person.Person{}, false, fmt.Errorf("build select %s query: %w", kind, err)
	}

	var row personTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return person.Person{}, false, nil
		}
		return person.Person{}, false, fmt.Errorf("select %s by key: %w", kind, err)
	}

	return personFromRow(row, kind), true, nil
}

func (r *PersonRepository) Insert(ctx context.Context, p person.Person) (int64, error) {
	query, args, err := qb.InsertInto(tableFor(p.Kind)).
		Columns("name", "norm_key").
		Values(p.Name, p.Key).
		Suffix("ON CONFLICT (norm_key) DO UPDATE SET updated_at = NOW() RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert %s query: %w", p.Kind, err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", p.Kind, p.Name, err)
	}
	return id, nil
}

// UpdateProfileIfEmpty backfills biography columns without overwriting
// anything already populated by an earlier run or document.
func (r *PersonRepository) UpdateProfileIfEmpty(ctx context.Context, kind person.Kind, id int64, profile person.Profile) error {
	builder := qb.Update(tableFor(kind)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id))

	if profile.BirthDate != nil {
		builder.SetExpr("birth_date", "COALESCE(birth_date, ?)", *profile.BirthDate)
	}
	if profile.BirthPlace != "" {
		builder.SetExpr("birth_place", "COALESCE(NULLIF(birth_place, ''), ?)", profile.BirthPlace)
	}
	if profile.HeightCM > 0 {
		builder.SetExpr("height_cm", "COALESCE(height_cm, ?)", profile.HeightCM)
	}
	if profile.WeightKG > 0 {
		builder.SetExpr("weight_kg", "COALESCE(weight_kg, ?)", profile.WeightKG)
	}
	if profile.Position != "" {
		builder.SetExpr("position", "COALESCE(NULLIF(position, ''), ?)", profile.Position)
	}
	if profile.Nationality != "" {
		builder.SetExpr("nationality", "COALESCE(NULLIF(nationality, ''), ?)", profile.Nationality)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build profile update query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s %d profile: %w", kind, id, err)
	}

	return r.insertCareer(ctx, kind, id, profile.Career)
}

func (r *PersonRepository) insertCareer(ctx context.Context, kind person.Kind, id int64, career []person.CareerEntry) error {
	for _, entry := range career {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO career_entries (person_kind, person_id, from_year, to_year, club, role)
VALUES (:person_kind, :person_id, :from_year, :to_year, :club, :role)
ON CONFLICT (person_kind, person_id, from_year, club) DO NOTHING`, map[string]any{
			"person_kind": string(kind),
			"person_id":   id,
			"from_year":   entry.FromYear,
			"to_year":     entry.ToYear,
			"club":        entry.Club,
			"role":        entry.Role,
		})
		if err != nil {
			return fmt.Errorf("bind career entry query: %w", err)
		}
		sqlQuery = r.db.Rebind(sqlQuery)
		if _, err := r.db.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("insert career entry for %s %d: %w", kind, id, err)
		}
	}
	return nil
}

// FindCoachByNameFragment matches a coach whose stored name contains the
// fragment, the enrichment fallback for partial biography names.
func (r *PersonRepository) FindCoachByNameFragment(ctx context.Context, fragment string) (person.Person, bool, error) {
	query, args, err := qb.Select("*").From("coaches").
		Where(qb.Expr("norm_key LIKE '%' || ? || '%'", fragment)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return person.Person{}, false, fmt.Errorf("build coach fragment query: %w", err)
	}

	var row personTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return person.Person{}, false, nil
		}
		return person.Person{}, false, fmt.Errorf("select coach by fragment: %w", err)
	}

	return personFromRow(row, person.KindCoach), true, nil
}

func personFromRow(row personTableModel, kind person.Kind) person.Person {
	p := person.Person{
		ID:          row.ID,
		Name:        row.Name,
		Key:         row.Key,
		Kind:        kind,
		BirthPlace:  row.BirthPlace.String,
		HeightCM:    int(row.HeightCM.Int64),
		WeightKG:    int(row.WeightKG.Int64),
		Position:    row.Position.String,
		Nationality: row.Nationality.String,
	}
	if row.BirthDate.Valid {
		birthDate := row.BirthDate.Time
		p.BirthDate = &birthDate
	}
	return p
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
