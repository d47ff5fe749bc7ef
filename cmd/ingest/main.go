package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/clubarchiv/ingest/internal/archive"
	"github.com/clubarchiv/ingest/internal/config"
	"github.com/clubarchiv/ingest/internal/infrastructure/repository/postgres"
	"github.com/clubarchiv/ingest/internal/normalize"
	"github.com/clubarchiv/ingest/internal/platform/logging"
	"github.com/clubarchiv/ingest/internal/reconcile"
	"github.com/clubarchiv/ingest/internal/resolve"
	"github.com/clubarchiv/ingest/internal/usecase"
)

func main() {
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "club archive ETL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), enrichCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired dependencies shared by the subcommands.
type app struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB
	loader *archive.Loader
	norm   *normalize.Normalizer
	club   *normalize.ClubCanonicalizer
	people *postgres.PersonRepository
}

func wire(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	norm := normalize.New()
	variants := cfg.ClubNameVariants
	if len(variants) == 0 && cfg.ClubName == normalize.DefaultClubName {
		variants = normalize.DefaultClubVariants
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		loader: archive.NewLoader(cfg.ArchiveDir, cfg.DocReadTimeout),
		norm:   norm,
		club:   normalize.NewClubCanonicalizer(norm, cfg.ClubName, variants),
		people: postgres.NewPersonRepository(db),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
	_ = a.logger.Sync()
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "ingest the archive into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := wire(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			seasonRepo := postgres.NewSeasonRepository(a.db)
			resolver := resolve.New(resolve.Stores{
				Teams:        postgres.NewTeamRepository(a.db),
				Competitions: postgres.NewCompetitionRepository(a.db),
				Seasons:      seasonRepo,
				People:       a.people,
			}, a.norm, a.club)

			service := usecase.NewIngestionService(
				a.loader,
				resolver,
				seasonRepo,
				postgres.NewFixtureWriter(a.db, a.logger),
				reconcile.New(a.norm),
				a.club,
				a.logger,
				a.cfg.ParseWorkers,
			)

			stats, err := service.Run(ctx, a.cfg.SeasonFilter)
			report, reportErr := stats.Report()
			if reportErr == nil {
				fmt.Println(report)
			}
			if err != nil {
				return fmt.Errorf("ingestion run: %w", err)
			}
			return nil
		},
	}
}

func enrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "backfill biography data onto ingested people",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := wire(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			service := usecase.NewEnrichmentService(
				a.loader,
				a.people,
				a.norm,
				a.logger,
				a.cfg.ParseWorkers,
			)

			stats, err := service.Run(ctx)
			report, reportErr := stats.Report()
			if reportErr == nil {
				fmt.Println(report)
			}
			if err != nil {
				return fmt.Errorf("enrichment run: %w", err)
			}
			return nil
		},
	}
}
