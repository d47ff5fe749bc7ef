package person

import "time"

// Kind selects the table a person record lives in.
type Kind string

const (
	KindPlayer  Kind = "player"
	KindCoach   Kind = "coach"
	KindReferee Kind = "referee"
)

// Person is a player, coach or referee. Biographical fields are filled
// opportunistically from lineups and later enriched from profile pages.
type Person struct {
	ID   int64
	Name string
	Key  string
	Kind Kind

	BirthDate   *time.Time
	BirthPlace  string
	HeightCM    int
	WeightKG    int
	Position    string
	Nationality string
}

// Profile carries attributes read from a biography document. Zero values
// mean "not present in the document" and never overwrite stored data.
type Profile struct {
	BirthDate   *time.Time
	BirthPlace  string
	HeightCM    int
	WeightKG    int
	Position    string
	Nationality string
	Career      []CareerEntry
}

// CareerEntry is one station of a person's career history.
type CareerEntry struct {
	FromYear int
	ToYear   int
	Club     string
	Role     string
}
