package competition

import "context"

// Repository exposes competition lookup and creation keyed by normalized name.
type Repository interface {
	FindByKey(ctx context.Context, key string) (Competition, bool, error)
	Insert(ctx context.Context, c Competition) (int64, error)
}
