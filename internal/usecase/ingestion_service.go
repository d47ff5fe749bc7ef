package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/clubarchiv/ingest/internal/archive"
	"github.com/clubarchiv/ingest/internal/domain/competition"
	"github.com/clubarchiv/ingest/internal/domain/match"
	"github.com/clubarchiv/ingest/internal/domain/season"
	"github.com/clubarchiv/ingest/internal/normalize"
	"github.com/clubarchiv/ingest/internal/parser"
	"github.com/clubarchiv/ingest/internal/platform/logging"
	"github.com/clubarchiv/ingest/internal/reconcile"
	"github.com/clubarchiv/ingest/internal/resolve"
)

// overviewPatterns maps competition overview documents to a fallback
// competition name for documents whose heading is unusable.
var overviewPatterns = []struct {
	glob     string
	fallback string
}{
	{"spielplan*.htm*", "Meisterschaft"},
	{"liga*.htm*", "Meisterschaft"},
	{"pokal*.htm*", "Pokal"},
	{"europapokal*.htm*", "Europapokal"},
	{"freundschaft*.htm*", "Freundschaftsspiele"},
}

// IngestionService walks the archive season by season and turns every
// competition overview and fixture detail document into persisted rows.
// Document parsing runs on a bounded worker pool; entity resolution and
// fixture commits stay on the orchestrating goroutine so identifiers and
// matchday numbers follow document order.
type IngestionService struct {
	loader     *archive.Loader
	resolver   *resolve.Resolver
	seasons    season.Repository
	writer     match.Writer
	reconciler *reconcile.Reconciler
	club       *normalize.ClubCanonicalizer
	logger     *logging.Logger
	workers    int
	now        func() time.Time
}

func NewIngestionService(
	loader *archive.Loader,
	resolver *resolve.Resolver,
	seasons season.Repository,
	writer match.Writer,
	reconciler *reconcile.Reconciler,
	club *normalize.ClubCanonicalizer,
	logger *logging.Logger,
	workers int,
) *IngestionService {
	if workers < 1 {
		workers = 1
	}
	return &IngestionService{
		loader:     loader,
		resolver:   resolver,
		seasons:    seasons,
		writer:     writer,
		reconciler: reconciler,
		club:       club,
		logger:     logger,
		workers:    workers,
		now:        time.Now,
	}
}

// Run ingests every season directory, restricted by the optional label
// filter. Per-unit failures are logged and counted; only destination
// store failures and context cancellation abort the run.
func (s *IngestionService) Run(ctx context.Context, seasonFilter []string) (*RunStats, error) {
	stats := &RunStats{StartedAt: s.now()}
	defer func() { stats.FinishedAt = s.now() }()

	dirs, err := s.loader.SeasonDirs(seasonFilter)
	if err != nil {
		return stats, fmt.Errorf("list season directories: %w", err)
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := s.ingestSeason(ctx, dir, stats); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			if errors.Is(err, archive.ErrDocumentUnavailable) {
				s.logger.WarnContext(ctx, "season skipped", "season", dir, "error", err)
				stats.DocumentsSkipped++
				continue
			}
			return stats, fmt.Errorf("ingest season %s: %w", dir, err)
		}
		stats.Seasons++
	}

	return stats, nil
}

func (s *IngestionService) ingestSeason(ctx context.Context, label string, stats *RunStats) error {
	se, err := season.ParseLabel(label)
	if err != nil {
		return errors.Wrapf(archive.ErrDocumentUnavailable, "%v", err)
	}

	clubTeamID, err := s.resolver.Team(ctx, s.club.CanonicalName())
	if err != nil {
		return fmt.Errorf("resolve club team: %w", err)
	}
	se.ClubTeamID = clubTeamID
	seasonID, err := s.resolver.Season(ctx, se)
	if err != nil {
		return err
	}

	log := s.logger.With("season", label)
	leagueSCID := int64(0)
	leagueHadFixtures := false

	for _, pattern := range overviewPatterns {
		paths, err := s.loader.Glob(label + "/" + pattern.glob)
		if err != nil {
			return err
		}
		for _, path := range paths {
			scID, isLeague, count, err := s.ingestCompetition(ctx, seasonID, path, pattern.fallback, stats)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.WarnContext(ctx, "competition overview skipped", "path", path, "error", err)
				stats.DocumentsSkipped++
				continue
			}
			stats.Competitions++
			if isLeague {
				leagueSCID = scID
				leagueHadFixtures = leagueHadFixtures || count > 0
			}
		}
	}

	if leagueSCID != 0 {
		if err := s.ingestMatchdayTables(ctx, label, leagueSCID, !leagueHadFixtures, stats); err != nil {
			return err
		}
		if err := s.ingestSquadPages(ctx, label, leagueSCID, stats); err != nil {
			return err
		}
	}
	return nil
}

// ingestCompetition processes one overview document and every fixture it
// references. Returns the season-competition id, whether the competition
// is a league, and how many fixtures were committed.
func (s *IngestionService) ingestCompetition(ctx context.Context, seasonID int64, path, fallbackName string, stats *RunStats) (int64, bool, int, error) {
	doc, err := s.loader.Load(ctx, path)
	if err != nil {
		return 0, false, 0, err
	}

	name := parser.CompetitionName(doc.Doc, fallbackName)
	comp := competition.Competition{Name: name, Level: competition.ClassifyLevel(name)}
	isLeague := comp.IsLeague()

	compID, err := s.resolver.Competition(ctx, name)
	if err != nil {
		return 0, false, 0, fmt.Errorf("resolve competition %q: %w", name, err)
	}
	scID, err := s.seasons.UpsertCompetition(ctx, season.Competition{
		SeasonID:      seasonID,
		CompetitionID: compID,
		SourcePath:    doc.Path,
	})
	if err != nil {
		return 0, false, 0, fmt.Errorf("upsert season competition: %w", err)
	}

	stubs := parser.ParseSeasonIndex(doc.Doc, isLeague)
	committed, err := s.ingestFixtures(ctx, path, stubs, scID, stats)
	if err != nil {
		return 0, false, 0, err
	}
	return scID, isLeague, committed, nil
}

// parseResult is one worker's output, drained in stub order.
type parseResult struct {
	path   string
	sheet  *parser.MatchSheet
	events *reconcile.MatchEvents
	err    error
}

// ingestFixtures parses the stubs' detail documents on the worker pool and
// commits the results in index order.
func (s *IngestionService) ingestFixtures(ctx context.Context, overviewPath string, stubs []parser.FixtureStub, scID int64, stats *RunStats) (int, error) {
	results := make([]parseResult, len(stubs))

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return 0, fmt.Errorf("create parse pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range stubs {
		stub := stubs[i]
		if stub.DetailPath == "" {
			continue
		}
		idx := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[idx] = s.parseDetail(ctx, overviewPath, stub.DetailPath)
		})
		if submitErr != nil {
			wg.Done()
			results[idx] = parseResult{err: submitErr}
		}
	}
	wg.Wait()

	committed := 0
	for i, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		stats.FixturesProcessed++

		res := results[i]
		if stub.DetailPath == "" {
			if err := s.commitStubOnly(ctx, scID, stub, overviewPath, stats); err != nil {
				return committed, err
			}
			committed++
			continue
		}
		if res.err != nil {
			if errors.Is(res.err, archive.ErrDocumentUnavailable) || errors.Is(res.err, parser.ErrLayoutMismatch) {
				s.logger.WarnContext(ctx, "fixture skipped", "path", res.path, "error", res.err)
				stats.DocumentsSkipped++
				stats.FixturesFailed++
				continue
			}
			return committed, res.err
		}

		fixture, err := s.buildFixture(ctx, scID, stub, res, stats)
		if err != nil {
			return committed, err
		}
		commitStats, err := s.writer.CommitFixture(ctx, fixture)
		if err != nil {
			s.logger.WarnContext(ctx, "fixture rolled back", "path", res.path, "error", err)
			stats.FixturesFailed++
			continue
		}
		stats.Records.Add(commitStats)
		stats.FixturesCommitted++
		committed++
	}
	return committed, nil
}

func (s *IngestionService) parseDetail(ctx context.Context, overviewPath, detailPath string) parseResult {
	path := resolveDetailPath(overviewPath, detailPath)
	doc, err := s.loader.Load(ctx, path)
	if err != nil {
		return parseResult{path: path, err: err}
	}
	sheet, err := parser.ParseMatchDetail(doc.Doc)
	if err != nil {
		return parseResult{path: doc.Path, err: err}
	}
	return parseResult{path: doc.Path, sheet: sheet, events: s.reconciler.Reconcile(sheet)}
}

// buildFixture resolves every name in the reconciled events to persisted
// identifiers. Invalid names drop the affected record only.
func (s *IngestionService) buildFixture(ctx context.Context, scID int64, stub parser.FixtureStub, res parseResult, stats *RunStats) (*match.Fixture, error) {
	sheet, events := res.sheet, res.events
	stats.Warnings += len(events.Warnings)
	for _, warning := range events.Warnings {
		s.logger.WarnContext(ctx, "reconciliation warning", "path", res.path, "detail", warning)
	}

	homeID, err := s.resolver.Team(ctx, sheet.HomeTeam)
	if err != nil {
		return nil, fmt.Errorf("resolve home team: %w", err)
	}
	awayID, err := s.resolver.Team(ctx, sheet.AwayTeam)
	if err != nil {
		return nil, fmt.Errorf("resolve away team: %w", err)
	}
	sideTeam := map[reconcile.Side]int64{
		reconcile.SideHome: homeID,
		reconcile.SideAway: awayID,
	}

	fx := &match.Fixture{
		Match: match.Match{
			SeasonCompetitionID: scID,
			Matchday:            stub.Matchday,
			Round:               stub.Stage,
			Date:                sheet.Date,
			Kickoff:             sheet.Kickoff,
			Attendance:          sheet.Attendance,
			HomeTeamID:          homeID,
			AwayTeamID:          awayID,
			SourcePath:          res.path,
		},
	}
	if fx.Match.Date == nil {
		fx.Match.Date = stub.Date
	}
	if sheet.FullTime != nil {
		home, away := sheet.FullTime.Home, sheet.FullTime.Away
		fx.Match.HomeScore, fx.Match.AwayScore = &home, &away
	}
	if sheet.HalfTime != nil {
		home, away := sheet.HalfTime.Home, sheet.HalfTime.Away
		fx.Match.HomeHalfScore, fx.Match.AwayHalfScore = &home, &away
	}

	// dropName reports rejected name fragments and keeps the fixture going
	dropName := func(role string, err error) {
		stats.NamesRejected++
		s.logger.WarnContext(ctx, "name rejected", "path", res.path, "role", role, "error", err)
	}

	playerIDs := make(map[string]int64)
	resolvePlayer := func(name string) (int64, bool) {
		if id, ok := playerIDs[name]; ok {
			return id, true
		}
		id, err := s.resolver.Player(ctx, name)
		if err != nil {
			dropName("player", err)
			return 0, false
		}
		playerIDs[name] = id
		return id, true
	}

	for _, app := range events.Appearances {
		playerID, ok := resolvePlayer(app.Name)
		if !ok {
			continue
		}
		lineup := match.Lineup{
			TeamID:        sideTeam[app.Side],
			PlayerID:      playerID,
			ShirtNumber:   app.Shirt,
			Starter:       app.Starter,
			EntryMinute:   app.Entry.Minute,
			EntryStoppage: app.Entry.Stoppage,
		}
		if app.Exit != nil {
			exitMinute := app.Exit.Minute
			lineup.ExitMinute = &exitMinute
			lineup.ExitStoppage = app.Exit.Stoppage
		}
		fx.Lineups = append(fx.Lineups, lineup)
	}

	for _, goal := range events.Goals {
		g := match.Goal{
			TeamID:   sideTeam[goal.Side],
			Minute:   goal.Clock.Minute,
			Stoppage: goal.Clock.Stoppage,
			ScoreAt:  goal.Score.String(),
			Kind:     goal.Kind,
		}
		if goal.Scorer != "" {
			if id, ok := resolvePlayer(goal.Scorer); ok {
				scorerID := id
				g.ScorerID = &scorerID
			}
		}
		if goal.Assist != "" {
			if id, ok := resolvePlayer(goal.Assist); ok {
				assistID := id
				g.AssistID = &assistID
			}
		}
		fx.Goals = append(fx.Goals, g)
	}

	for _, card := range events.Cards {
		playerID, ok := resolvePlayer(card.Name)
		if !ok {
			continue
		}
		fx.Cards = append(fx.Cards, match.Card{
			PlayerID: playerID,
			Minute:   card.Minute,
			Stoppage: card.Stoppage,
			Kind:     card.Kind,
		})
	}

	for _, sub := range events.Substitutions {
		inID, okIn := resolvePlayer(sub.In)
		outID, okOut := resolvePlayer(sub.Out)
		if !okIn || !okOut {
			continue
		}
		fx.Substitutions = append(fx.Substitutions, match.Substitution{
			TeamID:      sideTeam[sub.Side],
			Minute:      sub.Clock.Minute,
			Stoppage:    sub.Clock.Stoppage,
			PlayerInID:  inID,
			PlayerOutID: outID,
		})
	}

	coachSides := []struct {
		side reconcile.Side
		name string
	}{
		{reconcile.SideHome, sheet.HomeCoach},
		{reconcile.SideAway, sheet.AwayCoach},
	}
	for _, cs := range coachSides {
		side, coachName := cs.side, cs.name
		if coachName == "" {
			continue
		}
		coachID, err := s.resolver.Coach(ctx, coachName)
		if err != nil {
			dropName("coach", err)
			continue
		}
		fx.Coaches = append(fx.Coaches, match.CoachAssignment{
			TeamID:  sideTeam[side],
			CoachID: coachID,
			Role:    match.RoleHeadCoach,
		})
	}

	if sheet.Referee != "" {
		refereeID, err := s.resolver.Referee(ctx, sheet.Referee)
		if err != nil {
			dropName("referee", err)
		} else {
			fx.Match.RefereeID = &refereeID
			fx.Referees = append(fx.Referees, match.RefereeAssignment{
				RefereeID: refereeID,
				Role:      match.RoleReferee,
			})
		}
	}
	for _, linesman := range sheet.Linesmen {
		linesmanID, err := s.resolver.Referee(ctx, linesman)
		if err != nil {
			dropName("linesman", err)
			continue
		}
		fx.Referees = append(fx.Referees, match.RefereeAssignment{
			RefereeID: linesmanID,
			Role:      match.RoleAssistant,
		})
	}

	return fx, nil
}

// commitStubOnly persists a fixture reconstructed from tabular documents:
// teams, date and score, with no event detail.
func (s *IngestionService) commitStubOnly(ctx context.Context, scID int64, stub parser.FixtureStub, sourcePath string, stats *RunStats) error {
	clubID, err := s.resolver.Team(ctx, s.club.CanonicalName())
	if err != nil {
		return err
	}
	opponentID, err := s.resolver.Team(ctx, stub.Opponent)
	if err != nil {
		if errors.Is(err, normalize.ErrInvalidName) {
			stats.NamesRejected++
			s.logger.WarnContext(ctx, "name rejected", "path", sourcePath, "role", "team", "error", err)
			return nil
		}
		return err
	}

	m := match.Match{
		SeasonCompetitionID: scID,
		Matchday:            stub.Matchday,
		Round:               stub.Stage,
		Date:                stub.Date,
		HomeTeamID:          clubID,
		AwayTeamID:          opponentID,
		SourcePath:          fmt.Sprintf("%s#%s", sourcePath, stubKey(stub)),
	}
	if !stub.HomeGame {
		m.HomeTeamID, m.AwayTeamID = opponentID, clubID
	}
	if score, _, ok := parser.ParseScore(stub.ScoreText); ok {
		home, away := score.Home, score.Away
		m.HomeScore, m.AwayScore = &home, &away
	}

	if _, err := s.writer.CommitFixture(ctx, &match.Fixture{Match: m}); err != nil {
		s.logger.WarnContext(ctx, "fixture rolled back", "path", m.SourcePath, "error", err)
		stats.FixturesFailed++
		return nil
	}
	stats.FixturesCommitted++
	return nil
}

// ingestMatchdayTables reads the per-matchday table documents: standings
// snapshots always, fixture reconstruction only when the overview yielded
// nothing.
func (s *IngestionService) ingestMatchdayTables(ctx context.Context, label string, scID int64, reconstruct bool, stats *RunStats) error {
	paths, err := s.loader.Glob(label + "/tab*.htm*")
	if err != nil {
		return err
	}
	inferrer := parser.NewDelimiterSideInferrer(s.club)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.loader.Load(ctx, path)
		if err != nil {
			s.logger.WarnContext(ctx, "matchday table skipped", "path", path, "error", err)
			stats.DocumentsSkipped++
			continue
		}

		if row, ok := parser.ParseStandingsTable(doc.Doc, s.club.IsClub); ok && row.Matchday > 0 {
			md := season.Matchday{
				SeasonCompetitionID: scID,
				Matchday:            row.Matchday,
				Position:            row.Position,
				Points:              row.Points,
				GoalsFor:            row.GoalsFor,
				GoalsAgainst:        row.GoalsAgainst,
			}
			if row.Date != nil {
				md.Date = *row.Date
			}
			if err := s.seasons.UpsertMatchday(ctx, md); err != nil {
				return fmt.Errorf("upsert matchday %d: %w", row.Matchday, err)
			}
		}

		if reconstruct {
			for _, stub := range parser.ReconstructFromTables(doc.Doc, inferrer) {
				stats.FixturesProcessed++
				if err := s.commitStubOnly(ctx, scID, stub, doc.Path, stats); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ingestSquadPages reads declared season squads into season_squads.
func (s *IngestionService) ingestSquadPages(ctx context.Context, label string, scID int64, stats *RunStats) error {
	paths, err := s.loader.Glob(label + "/kader*.htm*")
	if err != nil {
		return err
	}
	for _, path := range paths {
		doc, err := s.loader.Load(ctx, path)
		if err != nil {
			s.logger.WarnContext(ctx, "squad page skipped", "path", path, "error", err)
			stats.DocumentsSkipped++
			continue
		}
		for _, row := range parser.ParseSquadPage(doc.Doc) {
			playerID, err := s.resolver.Player(ctx, row.Name)
			if err != nil {
				if errors.Is(err, normalize.ErrInvalidName) {
					stats.NamesRejected++
					continue
				}
				return err
			}
			member := season.SquadMember{
				SeasonCompetitionID: scID,
				PlayerID:            playerID,
				PositionGroup:       row.PositionGroup,
				ShirtNumber:         row.ShirtNumber,
			}
			if err := s.seasons.UpsertSquadMember(ctx, member); err != nil {
				return fmt.Errorf("upsert squad member: %w", err)
			}
		}
	}
	return nil
}

// resolveDetailPath joins an overview-relative link with the overview's
// directory.
func resolveDetailPath(overviewPath, detailPath string) string {
	if strings.Contains(detailPath, "/") {
		return detailPath
	}
	dir := overviewPath
	if idx := strings.LastIndex(overviewPath, "/"); idx >= 0 {
		dir = overviewPath[:idx]
	} else {
		return detailPath
	}
	return dir + "/" + detailPath
}

// stubKey distinguishes reconstructed fixtures sharing one source document.
func stubKey(stub parser.FixtureStub) string {
	return strings.ToLower(strings.Join(strings.Fields(fmt.Sprintf("%d-%s", stub.Matchday, stub.Opponent)), "-"))
}
