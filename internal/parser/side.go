package parser

import (
	"strings"

	"github.com/clubarchiv/ingest/internal/normalize"
)

// SideInferrer decides which side of a tabular fixture row the archived
// club played on. The delimiter heuristic misfires on unusual row layouts,
// so it stays behind an interface instead of growing inline.
type SideInferrer interface {
	// Infer splits a "Team A - Team B" row fragment. ok is false when
	// neither side is the archived club or the row has no delimiter.
	Infer(rowText string) (home bool, opponent string, ok bool)
}

// DelimiterSideInferrer assigns home to whichever side of the dash the
// archived club appears on.
type DelimiterSideInferrer struct {
	club *normalize.ClubCanonicalizer
}

func NewDelimiterSideInferrer(club *normalize.ClubCanonicalizer) *DelimiterSideInferrer {
	return &DelimiterSideInferrer{club: club}
}

func (d *DelimiterSideInferrer) Infer(rowText string) (bool, string, bool) {
	left, right, found := strings.Cut(rowText, " - ")
	if !found {
		return false, "", false
	}
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	if d.club.IsClub(left) {
		return true, right, true
	}
	if d.club.IsClub(right) {
		return false, left, true
	}
	return false, "", false
}
