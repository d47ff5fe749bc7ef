package postgres

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/clubarchiv/ingest/internal/domain/match"
	"github.com/clubarchiv/ingest/internal/platform/logging"
)

// FixtureWriter commits one fixture inside a single transaction. Records
// failing validation are skipped and counted; a write failure rolls back
// the whole fixture and leaves previously committed fixtures untouched.
type FixtureWriter struct {
	db       *sqlx.DB
	validate *validator.Validate
	logger   *logging.Logger
}

func NewFixtureWriter(db *sqlx.DB, logger *logging.Logger) *FixtureWriter {
	return &FixtureWriter{
		db:       db,
		validate: validator.New(),
		logger:   logger,
	}
}

func (w *FixtureWriter) CommitFixture(ctx context.Context, fx *match.Fixture) (match.CommitStats, error) {
	var stats match.CommitStats

	if err := w.validate.Struct(fx.Match); err != nil {
		return stats, fmt.Errorf("validate match %s: %w", fx.Match.SourcePath, err)
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin fixture tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	matchID, err := w.upsertMatch(ctx, tx, fx.Match)
	if err != nil {
		return stats, err
	}

	if stats.Lineups, err = w.insertLineups(ctx, tx, matchID, fx.Lineups); err != nil {
		return stats, err
	}
	if stats.Goals, err = w.insertGoals(ctx, tx, matchID, fx.Goals); err != nil {
		return stats, err
	}
	if stats.Cards, err = w.insertCards(ctx, tx, matchID, fx.Cards); err != nil {
		return stats, err
	}
	if stats.Substitutions, err = w.insertSubstitutions(ctx, tx, matchID, fx.Substitutions); err != nil {
		return stats, err
	}
	if stats.Coaches, err = w.insertCoaches(ctx, tx, matchID, fx.Coaches); err != nil {
		return stats, err
	}
	if stats.Referees, err = w.insertReferees(ctx, tx, matchID, fx.Referees); err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return match.CommitStats{}, fmt.Errorf("commit fixture %s: %w", fx.Match.SourcePath, err)
	}
	return stats, nil
}

func (w *FixtureWriter) upsertMatch(ctx context.Context, tx *sqlx.Tx, m match.Match) (int64, error) {
	sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (season_competition_id, matchday, round, leg, match_date, kickoff,
                     venue, attendance, referee_id, home_team_id, away_team_id,
                     home_score, away_score, home_half_score, away_half_score, source_path)
VALUES (:season_competition_id, :matchday, :round, :leg, :match_date, :kickoff,
        :venue, :attendance, :referee_id, :home_team_id, :away_team_id,
        :home_score, :away_score, :home_half_score, :away_half_score, :source_path)
ON CONFLICT (season_competition_id, source_path) DO UPDATE
SET matchday = EXCLUDED.matchday, round = EXCLUDED.round, leg = EXCLUDED.leg,
    match_date = EXCLUDED.match_date, kickoff = EXCLUDED.kickoff,
    venue = EXCLUDED.venue, attendance = EXCLUDED.attendance,
    referee_id = EXCLUDED.referee_id, home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id, home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score, home_half_score = EXCLUDED.home_half_score,
    away_half_score = EXCLUDED.away_half_score, updated_at = NOW()
RETURNING id`, map[string]any{
		"season_competition_id": m.SeasonCompetitionID,
		"matchday":              m.Matchday,
		"round":                 m.Round,
		"leg":                   m.Leg,
		"match_date":            m.Date,
		"kickoff":               m.Kickoff,
		"venue":                 m.Venue,
		"attendance":            m.Attendance,
		"referee_id":            m.RefereeID,
		"home_team_id":          m.HomeTeamID,
		"away_team_id":          m.AwayTeamID,
		"home_score":            m.HomeScore,
		"away_score":            m.AwayScore,
		"home_half_score":       m.HomeHalfScore,
		"away_half_score":       m.AwayHalfScore,
		"source_path":           m.SourcePath,
	})
	if err != nil {
		return 0, fmt.Errorf("bind upsert match query: %w", err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(sqlQuery), args...); err != nil {
		return 0, fmt.Errorf("upsert match %s: %w", m.SourcePath, err)
	}
	return id, nil
}

// insertKeyed runs one upsert per deduplicated record and folds the
// outcome into per-category counts. The RETURNING (xmax = 0) trick
// distinguishes fresh inserts from refreshed rows; statements ending in
// DO NOTHING report duplicates through the missing result row.
func insertKeyed[T any](
	ctx context.Context,
	w *FixtureWriter,
	tx *sqlx.Tx,
	records []T,
	key func(T) string,
	exec func(T) (string, map[string]any, bool, error),
) (match.CategoryStats, error) {
	var stats match.CategoryStats
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		if err := w.validate.Struct(record); err != nil {
			stats.Invalid++
			w.logger.WarnContext(ctx, "record failed validation, skipping", "error", err)
			continue
		}
		k := key(record)
		if _, dup := seen[k]; dup {
			stats.Duplicates++
			continue
		}
		seen[k] = struct{}{}

		query, params, returning, err := exec(record)
		if err != nil {
			return stats, err
		}
		sqlQuery, args, err := sqlx.Named(query, params)
		if err != nil {
			return stats, fmt.Errorf("bind event query: %w", err)
		}
		sqlQuery = tx.Rebind(sqlQuery)

		if returning {
			var fresh bool
			if err := tx.GetContext(ctx, &fresh, sqlQuery, args...); err != nil {
				return stats, fmt.Errorf("upsert event: %w", err)
			}
			if fresh {
				stats.Inserted++
			} else {
				stats.Duplicates++
			}
			continue
		}

		res, err := tx.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			return stats, fmt.Errorf("insert event: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Inserted++
		} else {
			stats.Duplicates++
		}
	}

	return stats, nil
}

func (w *FixtureWriter) insertLineups(ctx context.Context, tx *sqlx.Tx, matchID int64, lineups []match.Lineup) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(lineups, matchID, func(l *match.Lineup) { l.MatchID = matchID }),
		match.Lineup.NaturalKey,
		func(l match.Lineup) (string, map[string]any, bool, error) {
			return `
INSERT INTO match_lineups (match_id, team_id, player_id, shirt_number, starter,
                           entry_minute, entry_stoppage, exit_minute, exit_stoppage)
VALUES (:match_id, :team_id, :player_id, :shirt_number, :starter,
        :entry_minute, :entry_stoppage, :exit_minute, :exit_stoppage)
ON CONFLICT (match_id, team_id, player_id) DO UPDATE
SET shirt_number = EXCLUDED.shirt_number, starter = EXCLUDED.starter,
    entry_minute = EXCLUDED.entry_minute, entry_stoppage = EXCLUDED.entry_stoppage,
    exit_minute = EXCLUDED.exit_minute, exit_stoppage = EXCLUDED.exit_stoppage,
    updated_at = NOW()
RETURNING (xmax = 0)`, map[string]any{
					"match_id":       l.MatchID,
					"team_id":        l.TeamID,
					"player_id":      l.PlayerID,
					"shirt_number":   l.ShirtNumber,
					"starter":        l.Starter,
					"entry_minute":   l.EntryMinute,
					"entry_stoppage": l.EntryStoppage,
					"exit_minute":    l.ExitMinute,
					"exit_stoppage":  l.ExitStoppage,
				}, true, nil
		})
}

func (w *FixtureWriter) insertGoals(ctx context.Context, tx *sqlx.Tx, matchID int64, goals []match.Goal) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(goals, matchID, func(g *match.Goal) { g.MatchID = matchID }),
		match.Goal.NaturalKey,
		func(g match.Goal) (string, map[string]any, bool, error) {
			return `
INSERT INTO goals (match_id, team_id, scorer_id, assist_id, minute, stoppage, score_at, kind)
VALUES (:match_id, :team_id, :scorer_id, :assist_id, :minute, :stoppage, :score_at, :kind)
ON CONFLICT (match_id, COALESCE(scorer_id, 0), minute, stoppage, score_at) DO UPDATE
SET team_id = EXCLUDED.team_id, assist_id = EXCLUDED.assist_id,
    kind = EXCLUDED.kind, updated_at = NOW()
RETURNING (xmax = 0)`, map[string]any{
					"match_id":  g.MatchID,
					"team_id":   g.TeamID,
					"scorer_id": g.ScorerID,
					"assist_id": g.AssistID,
					"minute":    g.Minute,
					"stoppage":  g.Stoppage,
					"score_at":  g.ScoreAt,
					"kind":      g.Kind,
				}, true, nil
		})
}

func (w *FixtureWriter) insertCards(ctx context.Context, tx *sqlx.Tx, matchID int64, cards []match.Card) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(cards, matchID, func(c *match.Card) { c.MatchID = matchID }),
		match.Card.NaturalKey,
		func(c match.Card) (string, map[string]any, bool, error) {
			return `
INSERT INTO cards (match_id, player_id, minute, stoppage, kind)
VALUES (:match_id, :player_id, :minute, :stoppage, :kind)
ON CONFLICT (match_id, player_id, COALESCE(minute, -1), kind) DO NOTHING`, map[string]any{
					"match_id":  c.MatchID,
					"player_id": c.PlayerID,
					"minute":    c.Minute,
					"stoppage":  c.Stoppage,
					"kind":      c.Kind,
				}, false, nil
		})
}

func (w *FixtureWriter) insertSubstitutions(ctx context.Context, tx *sqlx.Tx, matchID int64, subs []match.Substitution) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(subs, matchID, func(s *match.Substitution) { s.MatchID = matchID }),
		match.Substitution.NaturalKey,
		func(s match.Substitution) (string, map[string]any, bool, error) {
			return `
INSERT INTO substitutions (match_id, team_id, minute, stoppage, player_in_id, player_out_id)
VALUES (:match_id, :team_id, :minute, :stoppage, :player_in_id, :player_out_id)
ON CONFLICT (match_id, player_in_id, player_out_id, minute, stoppage) DO NOTHING`, map[string]any{
					"match_id":      s.MatchID,
					"team_id":       s.TeamID,
					"minute":        s.Minute,
					"stoppage":      s.Stoppage,
					"player_in_id":  s.PlayerInID,
					"player_out_id": s.PlayerOutID,
				}, false, nil
		})
}

func (w *FixtureWriter) insertCoaches(ctx context.Context, tx *sqlx.Tx, matchID int64, coaches []match.CoachAssignment) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(coaches, matchID, func(c *match.CoachAssignment) { c.MatchID = matchID }),
		match.CoachAssignment.NaturalKey,
		func(c match.CoachAssignment) (string, map[string]any, bool, error) {
			return `
INSERT INTO match_coaches (match_id, team_id, coach_id, role)
VALUES (:match_id, :team_id, :coach_id, :role)
ON CONFLICT (match_id, team_id, coach_id) DO NOTHING`, map[string]any{
					"match_id": c.MatchID,
					"team_id":  c.TeamID,
					"coach_id": c.CoachID,
					"role":     c.Role,
				}, false, nil
		})
}

func (w *FixtureWriter) insertReferees(ctx context.Context, tx *sqlx.Tx, matchID int64, referees []match.RefereeAssignment) (match.CategoryStats, error) {
	return insertKeyed(ctx, w, tx, withMatchID(referees, matchID, func(r *match.RefereeAssignment) { r.MatchID = matchID }),
		match.RefereeAssignment.NaturalKey,
		func(r match.RefereeAssignment) (string, map[string]any, bool, error) {
			return `
INSERT INTO match_referees (match_id, referee_id, role)
VALUES (:match_id, :referee_id, :role)
ON CONFLICT (match_id, role, referee_id) DO NOTHING`, map[string]any{
					"match_id":   r.MatchID,
					"referee_id": r.RefereeID,
					"role":       r.Role,
				}, false, nil
		})
}

// withMatchID stamps the freshly upserted match id onto every child record
// before validation, so fixtures can be assembled before the id exists.
func withMatchID[T any](records []T, matchID int64, set func(*T)) []T {
	out := make([]T, len(records))
	copy(out, records)
	for i := range out {
		set(&out[i])
	}
	return out
}
