package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubarchiv/ingest/internal/archive"
	"github.com/clubarchiv/ingest/internal/infrastructure/repository/memory"
	"github.com/clubarchiv/ingest/internal/normalize"
	"github.com/clubarchiv/ingest/internal/platform/logging"
	"github.com/clubarchiv/ingest/internal/reconcile"
	"github.com/clubarchiv/ingest/internal/resolve"
)

const overviewPage = `<html><head><title>Bezirksliga 1965-66</title></head><body>
<h1>Bezirksliga 1965-66</h1>
<table>
<tr><td>1.</td><td>15.08.1965</td><td>FC Beispiel</td><td>2:1</td><td><a href="spiel01.htm">Bericht</a></td></tr>
<tr><td>2.</td><td>22.08.1965</td><td>FC Beispiel</td><td>0:0</td><td><a href="spiel02.htm">Bericht</a></td></tr>
<tr><td>3.</td><td>29.08.1965</td><td>TuS Muster</td><td>1:1</td><td><a href="fehlt.htm">Bericht</a></td></tr>
</table></body></html>`

const detailPage = `<html><body>
<h1>SV Westfalia 04 - FC Beispiel 2:1 (1:0)</h1>
<p>Sonntag, 15.08.1965, 15:00 Uhr, 1.200 Zuschauer</p>
<p>Schiedsrichter: Krause (Essen)</p>
<p>Linienrichter: Meyer und Kuhn</p>
<table class="aufstellung">
<tr><td>1</td><td>Lehmann</td></tr>
<tr><td>4</td><td>Weber <img src="gelb.gif"></td></tr>
<tr><td>9</td><td>Schulz</td></tr>
<tr><td colspan="2">Ersatzbank</td></tr>
<tr><td>12</td><td>Neumann</td></tr>
<tr><td colspan="2">Trainer: Hans Meier</td></tr>
</table>
<table class="aufstellung">
<tr><td>1</td><td>Berger</td></tr>
<tr><td>10</td><td>Krämer</td></tr>
<tr><td colspan="2">Trainer: Otto Lange</td></tr>
</table>
<ul class="tore">
<li>23. 1:0 Schulz</li>
<li>61. 1:1 Krämer (Foulelfmeter)</li>
<li>88. 2:1 Schulz</li>
</ul>
<ul class="wechsel">
<li>70. Neumann für Weber</li>
</ul>
</body></html>`

const reparsedDetailPage = `<html><body>
<h1>SV Westfalia 04 - FC Beispiel 3:1 (1:0)</h1>
<p>Sonntag, 15.08.1965, 15:00 Uhr, 1.200 Zuschauer</p>
<p>Schiedsrichter: Krause (Essen)</p>
<p>Linienrichter: Meyer und Kuhn</p>
<table class="aufstellung">
<tr><td>1</td><td>Lehmann</td></tr>
<tr><td>4</td><td>Weber <img src="gelb.gif"></td></tr>
<tr><td>9</td><td>Schulz</td></tr>
<tr><td colspan="2">Ersatzbank</td></tr>
<tr><td>12</td><td>Neumann</td></tr>
<tr><td colspan="2">Trainer: Hans Meier</td></tr>
</table>
<table class="aufstellung">
<tr><td>1</td><td>Berger</td></tr>
<tr><td>10</td><td>Krämer</td></tr>
<tr><td colspan="2">Trainer: Otto Lange</td></tr>
</table>
<ul class="tore">
<li>23. 1:0 Schulz</li>
<li>61. 1:1 Krämer (Foulelfmeter)</li>
<li>88. 2:1 Schulz</li>
<li>90. 3:1 Schulz</li>
</ul>
<ul class="wechsel">
<li>70. Neumann für Weber</li>
</ul>
</body></html>`

const shortDetailPage = `<html><body>
<h1>FC Beispiel - SV Westfalia 04 0:0</h1>
<table class="aufstellung"><tr><td>1</td><td>Petersen</td></tr></table>
<table class="aufstellung"><tr><td>1</td><td>Lehmann</td></tr></table>
</body></html>`

const standingsPage = `<html><body><h2>10. Spieltag</h2>
<p>Stand: 07.11.1965</p>
<table>
<tr><td>1.</td><td>TuS Muster</td><td>10</td><td>24:8</td><td>17:3</td></tr>
<tr><td>2.</td><td>SV Westfalia 04</td><td>10</td><td>21:10</td><td>15:5</td></tr>
</table></body></html>`

const squadPage = `<html><body><table>
<tr><td>Tor</td></tr>
<tr><td>1</td><td>Lehmann</td></tr>
<tr><td>Sturm</td></tr>
<tr><td>9</td><td>Schulz</td></tr>
</table></body></html>`

func writeArchiveFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func buildArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeArchiveFile(t, root, "1965-66/spielplan.htm", overviewPage)
	writeArchiveFile(t, root, "1965-66/spiel01.htm", detailPage)
	writeArchiveFile(t, root, "1965-66/spiel02.htm", shortDetailPage)
	writeArchiveFile(t, root, "1965-66/tab10.htm", standingsPage)
	writeArchiveFile(t, root, "1965-66/kader.htm", squadPage)
	return root
}

// newIngestion builds a service with a fresh resolver over the shared
// store, the way a second process run would start.
func newIngestion(root string, store *memory.Store, writer *memory.FixtureWriter) *IngestionService {
	norm := normalize.New()
	club := normalize.NewDefaultClubCanonicalizer(norm)
	resolver := resolve.New(resolve.Stores{
		Teams:        memory.NewTeamRepository(store),
		Competitions: memory.NewCompetitionRepository(store),
		Seasons:      memory.NewSeasonRepository(store),
		People:       memory.NewPersonRepository(store),
	}, norm, club)

	return NewIngestionService(
		archive.NewLoader(root, time.Second),
		resolver,
		memory.NewSeasonRepository(store),
		writer,
		reconcile.New(norm),
		club,
		logging.NewNop(),
		2,
	)
}

func TestIngestionService_Run(t *testing.T) {
	root := buildArchive(t)
	store := memory.NewStore()
	writer := memory.NewFixtureWriter(store)

	stats, err := newIngestion(root, store, writer).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Seasons != 1 || stats.Competitions != 1 {
		t.Fatalf("seasons/competitions = %d/%d", stats.Seasons, stats.Competitions)
	}
	if stats.FixturesProcessed != 3 || stats.FixturesCommitted != 2 || stats.FixturesFailed != 1 {
		t.Fatalf("fixtures = processed %d, committed %d, failed %d",
			stats.FixturesProcessed, stats.FixturesCommitted, stats.FixturesFailed)
	}
	if stats.DocumentsSkipped != 1 {
		t.Fatalf("documents skipped = %d", stats.DocumentsSkipped)
	}

	// spiel01: 4 home players incl. the substitute, 2 away; spiel02: 2
	if stats.Records.Lineups.Inserted != 8 {
		t.Fatalf("lineups inserted = %d", stats.Records.Lineups.Inserted)
	}
	if stats.Records.Goals.Inserted != 3 || stats.Records.Cards.Inserted != 1 {
		t.Fatalf("goals/cards = %d/%d", stats.Records.Goals.Inserted, stats.Records.Cards.Inserted)
	}
	if stats.Records.Substitutions.Inserted != 1 {
		t.Fatalf("substitutions = %d", stats.Records.Substitutions.Inserted)
	}
	// referee plus the two linesmen
	if stats.Records.Coaches.Inserted != 2 || stats.Records.Referees.Inserted != 3 {
		t.Fatalf("coaches/referees = %d/%d", stats.Records.Coaches.Inserted, stats.Records.Referees.Inserted)
	}

	fixtures := writer.Fixtures()
	if len(fixtures) != 2 {
		t.Fatalf("stored fixtures = %d", len(fixtures))
	}
	// both detail documents name the club, once per side
	if store.TeamCount() != 2 {
		t.Fatalf("teams = %d", store.TeamCount())
	}

	matchdays := store.Matchdays()
	if len(matchdays) != 1 {
		t.Fatalf("matchdays = %+v", matchdays)
	}
	md := matchdays[0]
	if md.Matchday != 10 || md.Position != 2 || md.Points != 15 ||
		md.GoalsFor != 21 || md.GoalsAgainst != 10 {
		t.Fatalf("matchday = %+v", md)
	}

	if got := len(store.SquadMembers()); got != 2 {
		t.Fatalf("squad members = %d", got)
	}
}

func TestIngestionService_SecondRunInsertsNothing(t *testing.T) {
	root := buildArchive(t)
	store := memory.NewStore()
	writer := memory.NewFixtureWriter(store)

	if _, err := newIngestion(root, store, writer).Run(context.Background(), nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	teams := store.TeamCount()

	stats, err := newIngestion(root, store, writer).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stats.Records.Lineups.Inserted != 0 || stats.Records.Lineups.Duplicates != 8 {
		t.Fatalf("lineups = %+v", stats.Records.Lineups)
	}
	if stats.Records.Goals.Inserted != 0 || stats.Records.Goals.Duplicates != 3 {
		t.Fatalf("goals = %+v", stats.Records.Goals)
	}
	if stats.FixturesCommitted != 2 {
		t.Fatalf("fixtures committed = %d", stats.FixturesCommitted)
	}
	if len(writer.Fixtures()) != 2 {
		t.Fatalf("stored fixtures = %d", len(writer.Fixtures()))
	}
	if store.TeamCount() != teams {
		t.Fatalf("second run minted teams: %d, was %d", store.TeamCount(), teams)
	}
}

func TestIngestionService_ReparseUpdatesMatch(t *testing.T) {
	root := buildArchive(t)
	store := memory.NewStore()
	writer := memory.NewFixtureWriter(store)

	if _, err := newIngestion(root, store, writer).Run(context.Background(), nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// the archive export gains a late goal and a corrected final score
	writeArchiveFile(t, root, "1965-66/spiel01.htm", reparsedDetailPage)

	stats, err := newIngestion(root, store, writer).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("reparse run: %v", err)
	}

	if stats.Records.Goals.Inserted != 1 || stats.Records.Goals.Duplicates != 3 {
		t.Fatalf("goals = %+v", stats.Records.Goals)
	}

	fixtures := writer.Fixtures()
	if len(fixtures) != 2 {
		t.Fatalf("stored fixtures = %d, reparse must update in place", len(fixtures))
	}
	for _, fx := range fixtures {
		if fx.Match.SourcePath != "1965-66/spiel01.htm" {
			continue
		}
		if fx.Match.HomeScore == nil || *fx.Match.HomeScore != 3 {
			t.Fatalf("reparsed score = %v", fx.Match.HomeScore)
		}
		return
	}
	t.Fatalf("reparsed fixture not found")
}

func TestIngestionService_SeasonFilter(t *testing.T) {
	root := buildArchive(t)
	writeArchiveFile(t, root, "1970-71/spielplan.htm", overviewPage)
	store := memory.NewStore()
	writer := memory.NewFixtureWriter(store)

	stats, err := newIngestion(root, store, writer).Run(context.Background(), []string{"1965-66"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Seasons != 1 {
		t.Fatalf("seasons = %d", stats.Seasons)
	}
}
