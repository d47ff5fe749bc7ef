package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The free-text event lines follow decades of loosely kept conventions.
// Each parse function returns ok=false on anything it does not recognize
// and never fails on malformed input.

var (
	minutePattern     = regexp.MustCompile(`^\s*(\d{1,3})\.(?:\s*\+\s*(\d{1,2}))?\s*(.*)$`)
	scorePattern      = regexp.MustCompile(`^\s*(\d{1,2})\s*:\s*(\d{1,2})\s*(.*)$`)
	parenthePattern   = regexp.MustCompile(`\(([^)]*)\)\s*$`)
	substitutePattern = regexp.MustCompile(`^(.+?)\s+für\s+(.+)$`)
	handOffPattern    = regexp.MustCompile(`(?i)^(?:(?:vorlage|flanke|pass|zuspiel)\s+)?(.+?)\s+an\s+(.+)$`)
)

// Clock is a match minute with optional stoppage time ("90.+3").
type Clock struct {
	Minute   int
	Stoppage int
}

// Score is a goal tally pair.
type Score struct {
	Home int
	Away int
}

func (s Score) String() string {
	return fmt.Sprintf("%d:%d", s.Home, s.Away)
}

// GoalEvent is one raw goal line before entity resolution.
type GoalEvent struct {
	Clock  Clock
	Score  Score
	Scorer string
	Assist string
	Kind   string // raw marker text from the parenthetical, "" for ordinary
}

// SubstitutionEvent is one raw substitution line before resolution.
type SubstitutionEvent struct {
	Clock Clock
	In    string
	Out   string
	Cards []string
}

// ParseMinute extracts a leading "<minute>." or "<minute>.+<stoppage>"
// prefix and returns the remaining text.
func ParseMinute(s string) (Clock, string, bool) {
	m := minutePattern.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, s, false
	}
	minute, err := strconv.Atoi(m[1])
	if err != nil {
		return Clock{}, s, false
	}
	clock := Clock{Minute: minute}
	if m[2] != "" {
		clock.Stoppage, _ = strconv.Atoi(m[2])
	}
	return clock, m[3], true
}

// ParseScore extracts a leading "<h>:<a>" pair and the remaining text.
func ParseScore(s string) (Score, string, bool) {
	m := scorePattern.FindStringSubmatch(s)
	if m == nil {
		return Score{}, s, false
	}
	home, _ := strconv.Atoi(m[1])
	away, _ := strconv.Atoi(m[2])
	return Score{Home: home, Away: away}, m[3], true
}

// ParseGoalLine reads one goal timeline entry, e.g.
//
//	"45. 1:0 Schulz"
//	"90.+2 2:1 Maier (Foulelfmeter)"
//	"78. 1:2 Krause (Eigentor)"
//	"63. 3:1 Vorlage Meier an Schulz"
func ParseGoalLine(line string) (GoalEvent, bool) {
	clock, rest, ok := ParseMinute(line)
	if !ok {
		return GoalEvent{}, false
	}
	score, rest, ok := ParseScore(rest)
	if !ok {
		return GoalEvent{}, false
	}

	event := GoalEvent{Clock: clock, Score: score}
	rest = strings.TrimSpace(rest)
	if m := parenthePattern.FindStringSubmatch(rest); m != nil {
		event.Kind = strings.TrimSpace(m[1])
		rest = strings.TrimSpace(rest[:len(rest)-len(m[0])])
	}
	// "Vorlage Meier an Schulz": the goal belongs to the name after "an"
	if m := handOffPattern.FindStringSubmatch(rest); m != nil {
		event.Assist = strings.TrimSpace(m[1])
		rest = strings.TrimSpace(m[2])
	}
	event.Scorer = rest
	// a marker alone still describes the goal: unattributed own goals and
	// penalties carry no scorer name
	return event, rest != "" || event.Kind != ""
}

// ParseSubstitutionLine reads one substitution entry,
// "60. Jones für Smith". Card glyph residue is stripped by the caller.
func ParseSubstitutionLine(line string) (SubstitutionEvent, bool) {
	clock, rest, ok := ParseMinute(line)
	if !ok {
		return SubstitutionEvent{}, false
	}
	m := substitutePattern.FindStringSubmatch(strings.TrimSpace(rest))
	if m == nil {
		return SubstitutionEvent{}, false
	}
	return SubstitutionEvent{
		Clock: clock,
		In:    strings.TrimSpace(m[1]),
		Out:   strings.TrimSpace(m[2]),
	}, true
}

// IsPenaltyMarker reports whether a goal parenthetical means penalty.
func IsPenaltyMarker(marker string) bool {
	m := strings.ToLower(marker)
	return strings.Contains(m, "elfmeter") || strings.Contains(m, "strafstoß") ||
		strings.Contains(m, "strafstoss")
}

// IsOwnGoalMarker reports whether a goal parenthetical means own goal.
func IsOwnGoalMarker(marker string) bool {
	return strings.Contains(strings.ToLower(marker), "eigentor")
}
