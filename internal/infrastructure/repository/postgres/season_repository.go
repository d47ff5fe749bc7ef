package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubarchiv/ingest/internal/domain/season"
	qb "github.com/clubarchiv/ingest/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) FindByLabel(ctx context.Context, label string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("label", label)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select season by label: %w", err)
	}

	return season.Season{
		ID:         row.ID,
		Label:      row.Label,
		StartYear:  row.StartYear,
		EndYear:    row.EndYear,
		ClubTeamID: row.ClubTeamID,
	}, true, nil
}

func (r *SeasonRepository) Insert(ctx context.Context, s season.Season) (int64, error) {
	query, args, err := qb.InsertInto("seasons").
		Columns("label", "start_year", "end_year", "club_team_id").
		Values(s.Label, s.StartYear, s.EndYear, s.ClubTeamID).
		Suffix("ON CONFLICT (label) DO UPDATE SET updated_at = NOW() RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert season query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert season %q: %w", s.Label, err)
	}
	return id, nil
}

// UpsertCompetition refreshes stage and provenance path on reparse instead
// of duplicating the join row.
func (r *SeasonRepository) UpsertCompetition(ctx context.Context, sc season.Competition) (int64, error) {
	query, args, err := qb.InsertInto("season_competitions").
		Columns("season_id", "competition_id", "stage", "source_path").
		Values(sc.SeasonID, sc.CompetitionID, sc.Stage, sc.SourcePath).
		Suffix(`ON CONFLICT (season_id, competition_id) DO UPDATE
SET stage = EXCLUDED.stage, source_path = EXCLUDED.source_path, updated_at = NOW()
RETURNING id`).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build upsert season competition query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("upsert season competition: %w", err)
	}
	return id, nil
}

func (r *SeasonRepository) UpsertMatchday(ctx context.Context, md season.Matchday) error {
	query, args, err := qb.InsertInto("season_matchdays").
		Columns("season_competition_id", "matchday", "snapshot_date", "position", "points", "goals_for", "goals_against").
		Values(md.SeasonCompetitionID, md.Matchday, nullTime(md.Date), md.Position, md.Points, md.GoalsFor, md.GoalsAgainst).
		Suffix(`ON CONFLICT (season_competition_id, matchday) DO UPDATE
SET snapshot_date = EXCLUDED.snapshot_date, position = EXCLUDED.position,
    points = EXCLUDED.points, goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against, updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert season matchday query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season matchday %d: %w", md.Matchday, err)
	}
	return nil
}

func (r *SeasonRepository) UpsertSquadMember(ctx context.Context, sm season.SquadMember) error {
	query, args, err := qb.InsertInto("season_squads").
		Columns("season_competition_id", "player_id", "position_group", "shirt_number").
		Values(sm.SeasonCompetitionID, sm.PlayerID, sm.PositionGroup, sm.ShirtNumber).
		Suffix(`ON CONFLICT (season_competition_id, player_id) DO UPDATE
SET position_group = EXCLUDED.position_group, shirt_number = EXCLUDED.shirt_number, updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert squad member query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert squad member player %d: %w", sm.PlayerID, err)
	}
	return nil
}
