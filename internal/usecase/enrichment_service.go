package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/clubarchiv/ingest/internal/archive"
	"github.com/clubarchiv/ingest/internal/domain/person"
	"github.com/clubarchiv/ingest/internal/normalize"
	"github.com/clubarchiv/ingest/internal/parser"
	"github.com/clubarchiv/ingest/internal/platform/logging"
)

// biographyDirs maps biography directories to the person kind they hold.
// The directories live at the archive root, with per-season copies in
// older exports.
var biographyDirs = []struct {
	globs []string
	kind  person.Kind
}{
	{[]string{"spieler/*.htm*", "*/spieler/*.htm*"}, person.KindPlayer},
	{[]string{"trainer/*.htm*", "*/trainer/*.htm*"}, person.KindCoach},
}

// EnrichmentService backfills biography data onto people created during
// ingestion. It only fills empty columns, so ingestion stays the source of
// truth for names and identifiers.
type EnrichmentService struct {
	loader  *archive.Loader
	people  person.Repository
	norm    *normalize.Normalizer
	logger  *logging.Logger
	workers int
	now     func() time.Time
}

func NewEnrichmentService(
	loader *archive.Loader,
	people person.Repository,
	norm *normalize.Normalizer,
	logger *logging.Logger,
	workers int,
) *EnrichmentService {
	if workers < 1 {
		workers = 1
	}
	return &EnrichmentService{
		loader:  loader,
		people:  people,
		norm:    norm,
		logger:  logger,
		workers: workers,
		now:     time.Now,
	}
}

// Run enriches every biography document found under the archive root.
func (s *EnrichmentService) Run(ctx context.Context) (*EnrichStats, error) {
	stats := &EnrichStats{StartedAt: s.now()}
	defer func() { stats.FinishedAt = s.now() }()

	var mu sync.Mutex

	for _, dir := range biographyDirs {
		var paths []string
		for _, glob := range dir.globs {
			matches, err := s.loader.Glob(glob)
			if err != nil {
				return stats, err
			}
			paths = append(paths, matches...)
		}

		p := pool.New().WithMaxGoroutines(s.workers)
		for _, path := range paths {
			path := path
			kind := dir.kind
			p.Go(func() {
				outcome := s.enrichOne(ctx, kind, path)
				mu.Lock()
				stats.Documents++
				switch outcome {
				case enrichMatched:
					stats.Matched++
				case enrichUnmatched:
					stats.Unmatched++
				default:
					stats.Skipped++
				}
				mu.Unlock()
			})
		}
		p.Wait()

		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

type enrichOutcome int

const (
	enrichSkipped enrichOutcome = iota
	enrichMatched
	enrichUnmatched
)

func (s *EnrichmentService) enrichOne(ctx context.Context, kind person.Kind, path string) enrichOutcome {
	doc, err := s.loader.Load(ctx, path)
	if err != nil {
		s.logger.WarnContext(ctx, "biography skipped", "path", path, "error", err)
		return enrichSkipped
	}

	name, profile, err := parser.ParseProfile(doc.Doc)
	if err != nil {
		s.logger.WarnContext(ctx, "biography unparseable", "path", path, "error", err)
		return enrichSkipped
	}

	key, err := s.norm.Key(name)
	if err != nil {
		s.logger.WarnContext(ctx, "biography name rejected", "path", path, "error", err)
		return enrichSkipped
	}

	target, found, err := s.people.FindByKey(ctx, kind, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "biography lookup failed", "path", path, "error", err)
		return enrichSkipped
	}
	if !found && kind == person.KindCoach {
		// coach biographies frequently carry honorifics or a fuller name
		// than the match sheets; fall back to the last name
		fields := strings.Fields(key)
		if len(fields) > 0 {
			target, found, err = s.people.FindCoachByNameFragment(ctx, fields[len(fields)-1])
			if err != nil {
				s.logger.ErrorContext(ctx, "biography fragment lookup failed", "path", path, "error", err)
				return enrichSkipped
			}
		}
	}
	if !found {
		s.logger.InfoContext(ctx, "biography has no ingested person", "path", path, "name", name)
		return enrichUnmatched
	}

	if err := s.people.UpdateProfileIfEmpty(ctx, kind, target.ID, profile); err != nil {
		if errors.Is(err, context.Canceled) {
			return enrichSkipped
		}
		s.logger.ErrorContext(ctx, "profile update failed", "path", path, "person", target.ID, "error", err)
		return enrichSkipped
	}
	return enrichMatched
}
