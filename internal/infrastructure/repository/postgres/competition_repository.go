package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubarchiv/ingest/internal/domain/competition"
	qb "github.com/clubarchiv/ingest/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) FindByKey(ctx context.Context, key string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.Eq("norm_key", key)).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition by key: %w", err)
	}

	return competition.Competition{
		ID:     row.ID,
		Name:   row.Name,
		Key:    row.Key,
		Level:  competition.Level(row.Level),
		Gender: row.Gender,
	}, true, nil
}

func (r *CompetitionRepository) Insert(ctx context.Context, c competition.Competition) (int64, error) {
	query, args, err := qb.InsertInto("competitions").
		Columns("name", "norm_key", "level", "gender").
		Values(c.Name, c.Key, string(c.Level), c.Gender).
		Suffix("ON CONFLICT (norm_key) DO UPDATE SET updated_at = NOW() RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert competition query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert competition %q: %w", c.Name, err)
	}
	return id, nil
}
