package resolve

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/clubarchiv/ingest/internal/domain/season"
	"github.com/clubarchiv/ingest/internal/infrastructure/repository/memory"
	"github.com/clubarchiv/ingest/internal/normalize"
)

func newTestResolver() (*Resolver, *memory.Store) {
	store := memory.NewStore()
	norm := normalize.New()
	club := normalize.NewDefaultClubCanonicalizer(norm)
	r := New(Stores{
		Teams:        memory.NewTeamRepository(store),
		Competitions: memory.NewCompetitionRepository(store),
		Seasons:      memory.NewSeasonRepository(store),
		People:       memory.NewPersonRepository(store),
	}, norm, club)
	return r, store
}

func TestResolver_SpellingVariantsShareOneID(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	first, err := r.Player(ctx, "Müller")
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	for _, variant := range []string{"7 Müller", "MÜLLER", "Müller 78."} {
		id, err := r.Player(ctx, variant)
		if err != nil {
			t.Fatalf("Player(%q): %v", variant, err)
		}
		if id != first {
			t.Fatalf("Player(%q) = %d, want %d", variant, id, first)
		}
	}
}

func TestResolver_KindsAreSeparateNamespaces(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	playerID, err := r.Player(ctx, "Hans Meier")
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	coachID, err := r.Coach(ctx, "Hans Meier")
	if err != nil {
		t.Fatalf("Coach: %v", err)
	}
	refereeID, err := r.Referee(ctx, "Hans Meier")
	if err != nil {
		t.Fatalf("Referee: %v", err)
	}
	if playerID == coachID || playerID == refereeID || coachID == refereeID {
		t.Fatalf("ids not distinct: %d %d %d", playerID, coachID, refereeID)
	}
}

func TestResolver_RejectsInvalidNames(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	for _, raw := range []string{"", "-", "???", "Trainer:"} {
		if _, err := r.Player(ctx, raw); !errors.Is(err, normalize.ErrInvalidName) {
			t.Fatalf("Player(%q) err = %v, want ErrInvalidName", raw, err)
		}
	}
}

func TestResolver_TeamCanonicalizesClubVariants(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	canonical, err := r.Team(ctx, "SV Westfalia 04")
	if err != nil {
		t.Fatalf("Team: %v", err)
	}
	for _, variant := range []string{"SV Westfalia", "Westfalia 04", "SpVg Westfalia 04"} {
		id, err := r.Team(ctx, variant)
		if err != nil {
			t.Fatalf("Team(%q): %v", variant, err)
		}
		if id != canonical {
			t.Fatalf("Team(%q) = %d, want %d", variant, id, canonical)
		}
	}

	other, err := r.Team(ctx, "FC Beispiel")
	if err != nil {
		t.Fatalf("Team: %v", err)
	}
	if other == canonical {
		t.Fatalf("opponent collapsed into the club record")
	}
}

func TestResolver_CacheSurvivesRepeatedLookups(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	seasonID, err := r.Season(ctx, season.Season{Label: "1965-66", StartYear: 1965, EndYear: 1966})
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	again, err := r.Season(ctx, season.Season{Label: "1965-66", StartYear: 1965, EndYear: 1966})
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	if again != seasonID {
		t.Fatalf("season resolved twice: %d and %d", seasonID, again)
	}

	compID, err := r.Competition(ctx, "Bezirksliga")
	if err != nil {
		t.Fatalf("Competition: %v", err)
	}
	compAgain, err := r.Competition(ctx, "Bezirksliga")
	if err != nil {
		t.Fatalf("Competition: %v", err)
	}
	if compAgain != compID {
		t.Fatalf("competition resolved twice: %d and %d", compID, compAgain)
	}
}

func TestResolver_FreshResolverFindsExistingRecords(t *testing.T) {
	first, store := newTestResolver()
	ctx := context.Background()

	id, err := first.Player(ctx, "Hans Schulz")
	if err != nil {
		t.Fatalf("Player: %v", err)
	}

	norm := normalize.New()
	second := New(Stores{
		Teams:        memory.NewTeamRepository(store),
		Competitions: memory.NewCompetitionRepository(store),
		Seasons:      memory.NewSeasonRepository(store),
		People:       memory.NewPersonRepository(store),
	}, norm, normalize.NewDefaultClubCanonicalizer(norm))

	again, err := second.Player(ctx, "Hans Schulz")
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if again != id {
		t.Fatalf("second run minted a new id: %d, want %d", again, id)
	}
}
