package match

import (
	"fmt"
	"time"
)

const (
	GoalKindOrdinary = "ORDINARY"
	GoalKindPenalty  = "PENALTY"
	GoalKindOwnGoal  = "OWN_GOAL"
)

const (
	CardYellow    = "YELLOW"
	CardYellowRed = "YELLOW_RED"
	CardRed       = "RED"
)

const (
	RoleHeadCoach = "HEAD"
	RoleReferee   = "REFEREE"
	RoleAssistant = "ASSISTANT"
)

// Match is one fixture. A match is unique per (season competition, source
// document); reparsing the same document updates the row in place.
type Match struct {
	ID                  int64
	SeasonCompetitionID int64 `validate:"required"`
	Matchday            int
	Round               string
	Leg                 int
	Date                *time.Time
	Kickoff             string
	Venue               string
	Attendance          int `validate:"min=0"`
	RefereeID           *int64
	HomeTeamID          int64 `validate:"required"`
	AwayTeamID          int64 `validate:"required"`
	HomeScore           *int
	AwayScore           *int
	HomeHalfScore       *int
	AwayHalfScore       *int
	SourcePath          string `validate:"required"`
}

// Lineup is one player's appearance in a match, unique per
// (match, team, player).
type Lineup struct {
	MatchID       int64 `validate:"required"`
	TeamID        int64 `validate:"required"`
	PlayerID      int64 `validate:"required"`
	ShirtNumber   int   `validate:"min=0,max=99"`
	Starter       bool
	EntryMinute   int `validate:"min=0,max=120"`
	EntryStoppage int `validate:"min=0,max=20"`
	ExitMinute    *int `validate:"omitempty,min=0,max=120"`
	ExitStoppage  int  `validate:"min=0,max=20"`
}

func (l Lineup) NaturalKey() string {
	return fmt.Sprintf("%d|%d|%d", l.MatchID, l.TeamID, l.PlayerID)
}

// Goal is one scoring event. ScorerID stays nil when an opponent own-goal
// carries no identifiable scorer; the running score then disambiguates.
type Goal struct {
	MatchID  int64 `validate:"required"`
	TeamID   int64 `validate:"required"`
	ScorerID *int64
	AssistID *int64
	Minute   int    `validate:"min=0,max=120"`
	Stoppage int    `validate:"min=0,max=20"`
	ScoreAt  string `validate:"required"`
	Kind     string `validate:"oneof=ORDINARY PENALTY OWN_GOAL"`
}

func (g Goal) NaturalKey() string {
	scorer := int64(0)
	if g.ScorerID != nil {
		scorer = *g.ScorerID
	}
	return fmt.Sprintf("%d|%d|%d|%d|%s", g.MatchID, scorer, g.Minute, g.Stoppage, g.ScoreAt)
}

// Card is one booking. Minute is nil for older records that list cards
// without a minute; nil is its own key value, not minute zero.
type Card struct {
	MatchID  int64 `validate:"required"`
	PlayerID int64 `validate:"required"`
	Minute   *int   `validate:"omitempty,min=0,max=120"`
	Stoppage int    `validate:"min=0,max=20"`
	Kind     string `validate:"oneof=YELLOW YELLOW_RED RED"`
}

func (c Card) NaturalKey() string {
	minute := -1
	if c.Minute != nil {
		minute = *c.Minute
	}
	return fmt.Sprintf("%d|%d|%d|%s", c.MatchID, c.PlayerID, minute, c.Kind)
}

// Substitution is one player swap.
type Substitution struct {
	MatchID     int64 `validate:"required"`
	TeamID      int64 `validate:"required"`
	Minute      int   `validate:"min=0,max=120"`
	Stoppage    int   `validate:"min=0,max=20"`
	PlayerInID  int64 `validate:"required"`
	PlayerOutID int64 `validate:"required"`
}

func (s Substitution) NaturalKey() string {
	return fmt.Sprintf("%d|%d|%d|%d|%d", s.MatchID, s.PlayerInID, s.PlayerOutID, s.Minute, s.Stoppage)
}

// CoachAssignment binds a coach to one side of a match.
type CoachAssignment struct {
	MatchID int64 `validate:"required"`
	TeamID  int64 `validate:"required"`
	CoachID int64 `validate:"required"`
	Role    string
}

func (c CoachAssignment) NaturalKey() string {
	return fmt.Sprintf("%d|%d|%d", c.MatchID, c.TeamID, c.CoachID)
}

// RefereeAssignment binds a referee to a match role.
type RefereeAssignment struct {
	MatchID   int64 `validate:"required"`
	RefereeID int64 `validate:"required"`
	Role      string
}

func (r RefereeAssignment) NaturalKey() string {
	return fmt.Sprintf("%d|%s|%d", r.MatchID, r.Role, r.RefereeID)
}

// Fixture bundles everything committed for one match in one transaction.
type Fixture struct {
	Match         Match
	Lineups       []Lineup
	Goals         []Goal
	Cards         []Card
	Substitutions []Substitution
	Coaches       []CoachAssignment
	Referees      []RefereeAssignment
}
