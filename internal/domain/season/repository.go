package season

import "context"

// Repository persists seasons, season competitions and their side tables.
type Repository interface {
	FindByLabel(ctx context.Context, label string) (Season, bool, error)
	Insert(ctx context.Context, s Season) (int64, error)

	// UpsertCompetition creates or refreshes the (season, competition)
	// join row and returns its id either way.
	UpsertCompetition(ctx context.Context, sc Competition) (int64, error)

	UpsertMatchday(ctx context.Context, md Matchday) error
	UpsertSquadMember(ctx context.Context, sm SquadMember) error
}
