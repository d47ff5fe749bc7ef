package competition

import "strings"

// Level classifies a competition from its name. The archive never labels
// levels explicitly, so classification stays heuristic.
type Level string

const (
	LevelTopFlight    Level = "TOP_FLIGHT"
	LevelSecondFlight Level = "SECOND_FLIGHT"
	LevelRegional     Level = "REGIONAL"
	LevelCup          Level = "CUP"
	LevelContinental  Level = "CONTINENTAL"
	LevelFriendly     Level = "FRIENDLY"
)

const (
	GenderMen   = "M"
	GenderWomen = "F"
)

// Competition is one contest a season was played in.
type Competition struct {
	ID     int64
	Name   string
	Key    string
	Level  Level
	Gender string
}

// ClassifyLevel derives the level from the competition name. Cup and
// continental markers win over flight markers because archive names like
// "DFB-Pokal 2. Runde" carry both.
func ClassifyLevel(name string) Level {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "europapokal"), strings.Contains(n, "uefa"),
		strings.Contains(n, "champions"), strings.Contains(n, "messestädte"):
		return LevelContinental
	case strings.Contains(n, "pokal"), strings.Contains(n, "cup"):
		return LevelCup
	case strings.Contains(n, "freundschaft"), strings.Contains(n, "testspiel"),
		strings.Contains(n, "vorbereitungsspiel"):
		return LevelFriendly
	case strings.Contains(n, "2. bundesliga"), strings.Contains(n, "2. liga"),
		strings.Contains(n, "zweite liga"), strings.Contains(n, "regionalliga"):
		return LevelSecondFlight
	case strings.Contains(n, "bundesliga"), strings.Contains(n, "oberliga"),
		strings.Contains(n, "gauliga"), strings.Contains(n, "meisterschaft"):
		return LevelTopFlight
	case strings.Contains(n, "landesliga"), strings.Contains(n, "verbandsliga"),
		strings.Contains(n, "bezirksliga"), strings.Contains(n, "kreisliga"),
		strings.Contains(n, "bezirksklasse"):
		return LevelRegional
	default:
		return LevelFriendly
	}
}

// ClassifyGender derives the gender from the competition name.
func ClassifyGender(name string) string {
	n := strings.ToLower(name)
	if strings.Contains(n, "frauen") || strings.Contains(n, "damen") {
		return GenderWomen
	}
	return GenderMen
}

// IsLeague reports whether fixtures in this competition carry sequential
// matchday numbers instead of stage labels.
func (c Competition) IsLeague() bool {
	switch c.Level {
	case LevelTopFlight, LevelSecondFlight, LevelRegional:
		return true
	default:
		return false
	}
}
