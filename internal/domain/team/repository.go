package team

import "context"

// Repository exposes team lookup and creation keyed by normalized name.
type Repository interface {
	FindByKey(ctx context.Context, key string) (Team, bool, error)
	Insert(ctx context.Context, t Team) (int64, error)
}
