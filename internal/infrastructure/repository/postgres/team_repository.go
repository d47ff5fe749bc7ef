package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubarchiv/ingest/internal/domain/team"
	qb "github.com/clubarchiv/ingest/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) FindByKey(ctx context.Context, key string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("norm_key", key)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by key: %w", err)
	}

	return team.Team{
		ID:        row.ID,
		Name:      row.Name,
		Key:       row.Key,
		Kind:      row.Kind,
		SourceURL: row.SourceURL.String,
	}, true, nil
}

func (r *TeamRepository) Insert(ctx context.Context, t team.Team) (int64, error) {
	query, args, err := qb.InsertInto("teams").
		Columns("name", "norm_key", "kind", "source_url").
		Values(t.Name, t.Key, t.Kind, nullString(t.SourceURL)).
		Suffix("ON CONFLICT (norm_key) DO UPDATE SET updated_at = NOW() RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	return id, nil
}
