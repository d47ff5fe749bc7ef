package person

import "context"

// Repository persists players, coaches and referees. Implementations map
// the kind onto separate tables sharing the same natural key rule.
type Repository interface {
	FindByKey(ctx context.Context, kind Kind, key string) (Person, bool, error)
	Insert(ctx context.Context, p Person) (int64, error)

	// UpdateProfileIfEmpty backfills biography columns that are still
	// empty; populated columns are left untouched.
	UpdateProfileIfEmpty(ctx context.Context, kind Kind, id int64, profile Profile) error

	// FindCoachByNameFragment is the enrichment fallback for coaches whose
	// biography pages carry only part of the archived name.
	FindCoachByNameFragment(ctx context.Context, fragment string) (Person, bool, error)
}
