package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubarchiv/ingest/internal/domain/competition"
	"github.com/clubarchiv/ingest/internal/domain/person"
	"github.com/clubarchiv/ingest/internal/domain/season"
	"github.com/clubarchiv/ingest/internal/domain/team"
	"github.com/clubarchiv/ingest/internal/normalize"
)

// Stores bundles the persisted lookups the resolver works against.
type Stores struct {
	Teams        team.Repository
	Competitions competition.Repository
	Seasons      season.Repository
	People       person.Repository
}

// Resolver maps normalized name keys to persisted identifiers for the six
// entity kinds. Caches live for one run, so equal keys always yield one
// identifier no matter which component asks. A single mutex serializes all
// mutation; parse workers stay free to run concurrently up to this point.
type Resolver struct {
	mu     sync.Mutex
	stores Stores
	norm   *normalize.Normalizer
	club   *normalize.ClubCanonicalizer

	teams        map[string]int64
	competitions map[string]int64
	seasons      map[string]int64
	people       map[person.Kind]map[string]int64
}

func New(stores Stores, norm *normalize.Normalizer, club *normalize.ClubCanonicalizer) *Resolver {
	return &Resolver{
		stores:       stores,
		norm:         norm,
		club:         club,
		teams:        make(map[string]int64),
		competitions: make(map[string]int64),
		seasons:      make(map[string]int64),
		people: map[person.Kind]map[string]int64{
			person.KindPlayer:  {},
			person.KindCoach:   {},
			person.KindReferee: {},
		},
	}
}

// Team resolves a team name, rewriting historical club variants to the
// canonical name before the key is computed.
func (r *Resolver) Team(ctx context.Context, rawName string) (int64, error) {
	display, err := r.norm.Clean(r.club.Apply(rawName))
	if err != nil {
		return 0, fmt.Errorf("team name %q: %w", rawName, err)
	}
	key := r.norm.Fold(display)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.teams[key]; ok {
		return id, nil
	}
	existing, found, err := r.stores.Teams.FindByKey(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("find team by key %q: %w", key, err)
	}
	if found {
		r.teams[key] = existing.ID
		return existing.ID, nil
	}
	id, err := r.stores.Teams.Insert(ctx, team.Team{Name: display, Key: key, Kind: team.ClassifyKind(display)})
	if err != nil {
		return 0, fmt.Errorf("insert team %q: %w", display, err)
	}
	r.teams[key] = id
	return id, nil
}

// Competition resolves a competition name, deriving level and gender from
// the name on first sight.
func (r *Resolver) Competition(ctx context.Context, rawName string) (int64, error) {
	display, err := r.norm.Clean(rawName)
	if err != nil {
		return 0, fmt.Errorf("competition name %q: %w", rawName, err)
	}
	key := r.norm.Fold(display)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.competitions[key]; ok {
		return id, nil
	}
	existing, found, err := r.stores.Competitions.FindByKey(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("find competition by key %q: %w", key, err)
	}
	if found {
		r.competitions[key] = existing.ID
		return existing.ID, nil
	}
	id, err := r.stores.Competitions.Insert(ctx, competition.Competition{
		Name:   display,
		Key:    key,
		Level:  competition.ClassifyLevel(display),
		Gender: competition.ClassifyGender(display),
	})
	if err != nil {
		return 0, fmt.Errorf("insert competition %q: %w", display, err)
	}
	r.competitions[key] = id
	return id, nil
}

// Season resolves a season by label, creating it with the given club team
// reference on first sight.
func (r *Resolver) Season(ctx context.Context, s season.Season) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.seasons[s.Label]; ok {
		return id, nil
	}
	existing, found, err := r.stores.Seasons.FindByLabel(ctx, s.Label)
	if err != nil {
		return 0, fmt.Errorf("find season %q: %w", s.Label, err)
	}
	if found {
		r.seasons[s.Label] = existing.ID
		return existing.ID, nil
	}
	id, err := r.stores.Seasons.Insert(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("insert season %q: %w", s.Label, err)
	}
	r.seasons[s.Label] = id
	return id, nil
}

// Player resolves a player name. Name validation runs first so role
// labels, goal-event text and placeholders never become Player records.
func (r *Resolver) Player(ctx context.Context, rawName string) (int64, error) {
	return r.person(ctx, person.KindPlayer, rawName)
}

func (r *Resolver) Coach(ctx context.Context, rawName string) (int64, error) {
	return r.person(ctx, person.KindCoach, rawName)
}

func (r *Resolver) Referee(ctx context.Context, rawName string) (int64, error) {
	return r.person(ctx, person.KindReferee, rawName)
}

func (r *Resolver) person(ctx context.Context, kind person.Kind, rawName string) (int64, error) {
	display, err := r.norm.Clean(rawName)
	if err != nil {
		return 0, fmt.Errorf("%s name %q: %w", kind, rawName, err)
	}
	key := r.norm.Fold(display)

	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.people[kind]
	if id, ok := cache[key]; ok {
		return id, nil
	}
	existing, found, err := r.stores.People.FindByKey(ctx, kind, key)
	if err != nil {
		return 0, fmt.Errorf("find %s by key %q: %w", kind, key, err)
	}
	if found {
		cache[key] = existing.ID
		return existing.ID, nil
	}
	id, err := r.stores.People.Insert(ctx, person.Person{Name: display, Key: key, Kind: kind})
	if err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", kind, display, err)
	}
	cache[key] = id
	return id, nil
}
