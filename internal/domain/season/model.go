package season

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var labelPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Season is one playing year of the archived club, labeled "1965-66".
type Season struct {
	ID         int64
	Label      string
	StartYear  int
	EndYear    int
	ClubTeamID int64
}

// ParseLabel splits a season directory name into start and end year.
func ParseLabel(label string) (Season, error) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return Season{}, fmt.Errorf("season label %q does not match YYYY-YY", label)
	}
	start, _ := strconv.Atoi(m[1])
	suffix, _ := strconv.Atoi(m[2])
	end := (start/100)*100 + suffix
	if end < start {
		// century rollover, e.g. 1999-00
		end += 100
	}
	return Season{Label: label, StartYear: start, EndYear: end}, nil
}

// Competition joins a season with one competition contested in it.
// Stage and SourcePath are refreshed on reparse, never duplicated.
type Competition struct {
	ID            int64
	SeasonID      int64
	CompetitionID int64
	Stage         string
	SourcePath    string
}

// Matchday is a standings snapshot after one league matchday.
type Matchday struct {
	SeasonCompetitionID int64
	Matchday            int       `validate:"min=1"`
	Date                time.Time
	Position            int `validate:"min=0"`
	Points              int
	GoalsFor            int `validate:"min=0"`
	GoalsAgainst        int `validate:"min=0"`
}

// SquadMember is a declared squad entry for one season competition.
type SquadMember struct {
	SeasonCompetitionID int64 `validate:"required"`
	PlayerID            int64 `validate:"required"`
	PositionGroup       string
	ShirtNumber         int
}
