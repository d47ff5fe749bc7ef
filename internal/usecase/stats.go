package usecase

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/clubarchiv/ingest/internal/domain/match"
)

// RunStats accumulates one ingestion run. Serialized as the end-of-run
// report.
type RunStats struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Seasons           int `json:"seasons"`
	Competitions      int `json:"competitions"`
	FixturesProcessed int `json:"fixtures_processed"`
	FixturesCommitted int `json:"fixtures_committed"`
	FixturesFailed    int `json:"fixtures_failed"`
	DocumentsSkipped  int `json:"documents_skipped"`
	NamesRejected     int `json:"names_rejected"`
	Warnings          int `json:"warnings"`

	Records match.CommitStats `json:"records"`
}

// Report renders the run statistics as indented JSON.
func (s *RunStats) Report() (string, error) {
	out, err := sonic.ConfigDefault.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EnrichStats accumulates one enrichment run.
type EnrichStats struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Documents int `json:"documents"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Skipped   int `json:"skipped"`
}

func (s *EnrichStats) Report() (string, error) {
	out, err := sonic.ConfigDefault.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
