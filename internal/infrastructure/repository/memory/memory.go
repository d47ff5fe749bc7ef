package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubarchiv/ingest/internal/domain/competition"
	"github.com/clubarchiv/ingest/internal/domain/match"
	"github.com/clubarchiv/ingest/internal/domain/person"
	"github.com/clubarchiv/ingest/internal/domain/season"
	"github.com/clubarchiv/ingest/internal/domain/team"
)

// Store holds every entity table in process memory. It implements the same
// repository contracts as the postgres implementations, minus durability,
// and backs the ingestion tests.
type Store struct {
	mu sync.Mutex

	nextID int64

	teams        map[string]team.Team
	competitions map[string]competition.Competition
	seasons      map[string]season.Season
	people       map[person.Kind]map[string]person.Person

	seasonCompetitions map[string]int64
	matchdays          map[string]season.Matchday
	squads             map[string]season.SquadMember

	Careers map[string][]person.CareerEntry
}

func NewStore() *Store {
	return &Store{
		teams:              make(map[string]team.Team),
		competitions:       make(map[string]competition.Competition),
		seasons:            make(map[string]season.Season),
		people:             make(map[person.Kind]map[string]person.Person),
		seasonCompetitions: make(map[string]int64),
		matchdays:          make(map[string]season.Matchday),
		squads:             make(map[string]season.SquadMember),
		Careers:            make(map[string][]person.CareerEntry),
	}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Matchdays() []season.Matchday {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]season.Matchday, 0, len(s.matchdays))
	for _, md := range s.matchdays {
		out = append(out, md)
	}
	return out
}

func (s *Store) SquadMembers() []season.SquadMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]season.SquadMember, 0, len(s.squads))
	for _, sm := range s.squads {
		out = append(out, sm)
	}
	return out
}

func (s *Store) TeamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}

type TeamRepository struct{ store *Store }

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) FindByKey(_ context.Context, key string) (team.Team, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.teams[key]
	return t, ok, nil
}

func (r *TeamRepository) Insert(_ context.Context, t team.Team) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.teams[t.Key]; ok {
		return existing.ID, nil
	}
	t.ID = r.store.allocID()
	r.store.teams[t.Key] = t
	return t.ID, nil
}

type CompetitionRepository struct{ store *Store }

func NewCompetitionRepository(store *Store) *CompetitionRepository {
	return &CompetitionRepository{store: store}
}

func (r *CompetitionRepository) FindByKey(_ context.Context, key string) (competition.Competition, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.competitions[key]
	return c, ok, nil
}

func (r *CompetitionRepository) Insert(_ context.Context, c competition.Competition) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.competitions[c.Key]; ok {
		return existing.ID, nil
	}
	c.ID = r.store.allocID()
	r.store.competitions[c.Key] = c
	return c.ID, nil
}

type SeasonRepository struct{ store *Store }

func NewSeasonRepository(store *Store) *SeasonRepository {
	return &SeasonRepository{store: store}
}

func (r *SeasonRepository) FindByLabel(_ context.Context, label string) (season.Season, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.seasons[label]
	return s, ok, nil
}

func (r *SeasonRepository) Insert(_ context.Context, s season.Season) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.seasons[s.Label]; ok {
		return existing.ID, nil
	}
	s.ID = r.store.allocID()
	r.store.seasons[s.Label] = s
	return s.ID, nil
}

func (r *SeasonRepository) UpsertCompetition(_ context.Context, sc season.Competition) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := fmt.Sprintf("%d|%d", sc.SeasonID, sc.CompetitionID)
	if id, ok := r.store.seasonCompetitions[key]; ok {
		return id, nil
	}
	id := r.store.allocID()
	r.store.seasonCompetitions[key] = id
	return id, nil
}

func (r *SeasonRepository) UpsertMatchday(_ context.Context, md season.Matchday) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := fmt.Sprintf("%d|%d", md.SeasonCompetitionID, md.Matchday)
	r.store.matchdays[key] = md
	return nil
}

func (r *SeasonRepository) UpsertSquadMember(_ context.Context, sm season.SquadMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := fmt.Sprintf("%d|%d", sm.SeasonCompetitionID, sm.PlayerID)
	r.store.squads[key] = sm
	return nil
}

type PersonRepository struct{ store *Store }

func NewPersonRepository(store *Store) *PersonRepository {
	return &PersonRepository{store: store}
}

func (r *PersonRepository) kindTable(kind person.Kind) map[string]person.Person {
	table, ok := r.store.people[kind]
	if !ok {
		table = make(map[string]person.Person)
		r.store.people[kind] = table
	}
	return table
}

func (r *PersonRepository) FindByKey(_ context.Context, kind person.Kind, key string) (person.Person, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.kindTable(kind)[key]
	return p, ok, nil
}

func (r *PersonRepository) Insert(_ context.Context, p person.Person) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	table := r.kindTable(p.Kind)
	if existing, ok := table[p.Key]; ok {
		return existing.ID, nil
	}
	p.ID = r.store.allocID()
	table[p.Key] = p
	return p.ID, nil
}

func (r *PersonRepository) UpdateProfileIfEmpty(_ context.Context, kind person.Kind, id int64, profile person.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	table := r.kindTable(kind)
	for key, p := range table {
		if p.ID != id {
			continue
		}
		if p.BirthDate == nil && profile.BirthDate != nil {
			p.BirthDate = profile.BirthDate
		}
		if p.BirthPlace == "" {
			p.BirthPlace = profile.BirthPlace
		}
		if p.HeightCM == 0 {
			p.HeightCM = profile.HeightCM
		}
		if p.WeightKG == 0 {
			p.WeightKG = profile.WeightKG
		}
		if p.Position == "" {
			p.Position = profile.Position
		}
		if p.Nationality == "" {
			p.Nationality = profile.Nationality
		}
		table[key] = p

		careerKey := fmt.Sprintf("%s|%d", kind, id)
		for _, entry := range profile.Career {
			if !careerContains(r.store.Careers[careerKey], entry) {
				r.store.Careers[careerKey] = append(r.store.Careers[careerKey], entry)
			}
		}
		return nil
	}
	return fmt.Errorf("update profile: %s %d not found", kind, id)
}

func careerContains(entries []person.CareerEntry, entry person.CareerEntry) bool {
	for _, e := range entries {
		if e.FromYear == entry.FromYear && e.Club == entry.Club {
			return true
		}
	}
	return false
}

func (r *PersonRepository) FindCoachByNameFragment(_ context.Context, fragment string) (person.Person, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var (
		best  person.Person
		found bool
	)
	for key, p := range r.kindTable(person.KindCoach) {
		if !containsFold(key, fragment) {
			continue
		}
		if !found || p.ID < best.ID {
			best = p
			found = true
		}
	}
	return best, found, nil
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// FixtureWriter stores committed fixtures keyed by source path, mirroring
// the postgres writer's upsert-by-document behavior.
type FixtureWriter struct {
	store *Store

	mu       sync.Mutex
	fixtures map[string]*storedFixture
}

type storedFixture struct {
	id      int64
	fixture match.Fixture
	keys    map[string]map[string]struct{}
}

func NewFixtureWriter(store *Store) *FixtureWriter {
	return &FixtureWriter{
		store:    store,
		fixtures: make(map[string]*storedFixture),
	}
}

func (w *FixtureWriter) Fixtures() []match.Fixture {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]match.Fixture, 0, len(w.fixtures))
	for _, sf := range w.fixtures {
		out = append(out, sf.fixture)
	}
	return out
}

func (w *FixtureWriter) CommitFixture(_ context.Context, fx *match.Fixture) (match.CommitStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	docKey := fmt.Sprintf("%d|%s", fx.Match.SeasonCompetitionID, fx.Match.SourcePath)
	sf, ok := w.fixtures[docKey]
	if !ok {
		w.store.mu.Lock()
		id := w.store.allocID()
		w.store.mu.Unlock()
		sf = &storedFixture{id: id, keys: make(map[string]map[string]struct{})}
		w.fixtures[docKey] = sf
	}
	m := fx.Match
	m.ID = sf.id
	sf.fixture = match.Fixture{Match: m}

	var stats match.CommitStats
	stats.Lineups = commitCategory(sf, "lineups", fx.Lineups,
		func(l *match.Lineup) { l.MatchID = sf.id },
		match.Lineup.NaturalKey,
		func(l match.Lineup) { sf.fixture.Lineups = append(sf.fixture.Lineups, l) })
	stats.Goals = commitCategory(sf, "goals", fx.Goals,
		func(g *match.Goal) { g.MatchID = sf.id },
		match.Goal.NaturalKey,
		func(g match.Goal) { sf.fixture.Goals = append(sf.fixture.Goals, g) })
	stats.Cards = commitCategory(sf, "cards", fx.Cards,
		func(c *match.Card) { c.MatchID = sf.id },
		match.Card.NaturalKey,
		func(c match.Card) { sf.fixture.Cards = append(sf.fixture.Cards, c) })
	stats.Substitutions = commitCategory(sf, "substitutions", fx.Substitutions,
		func(s *match.Substitution) { s.MatchID = sf.id },
		match.Substitution.NaturalKey,
		func(s match.Substitution) { sf.fixture.Substitutions = append(sf.fixture.Substitutions, s) })
	stats.Coaches = commitCategory(sf, "coaches", fx.Coaches,
		func(c *match.CoachAssignment) { c.MatchID = sf.id },
		match.CoachAssignment.NaturalKey,
		func(c match.CoachAssignment) { sf.fixture.Coaches = append(sf.fixture.Coaches, c) })
	stats.Referees = commitCategory(sf, "referees", fx.Referees,
		func(r *match.RefereeAssignment) { r.MatchID = sf.id },
		match.RefereeAssignment.NaturalKey,
		func(r match.RefereeAssignment) { sf.fixture.Referees = append(sf.fixture.Referees, r) })

	return stats, nil
}

func commitCategory[T any](
	sf *storedFixture,
	category string,
	records []T,
	stamp func(*T),
	key func(T) string,
	keep func(T),
) match.CategoryStats {
	var stats match.CategoryStats
	existing, ok := sf.keys[category]
	if !ok {
		existing = make(map[string]struct{})
		sf.keys[category] = existing
	}
	for _, record := range records {
		stamp(&record)
		k := key(record)
		if _, dup := existing[k]; dup {
			stats.Duplicates++
			continue
		}
		existing[k] = struct{}{}
		keep(record)
		stats.Inserted++
	}
	return stats
}
