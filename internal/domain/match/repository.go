package match

import "context"

// CategoryStats counts the outcome of one record category in a commit.
type CategoryStats struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

func (c *CategoryStats) Add(other CategoryStats) {
	c.Inserted += other.Inserted
	c.Duplicates += other.Duplicates
	c.Invalid += other.Invalid
}

// CommitStats reports one fixture commit per record category.
type CommitStats struct {
	Lineups       CategoryStats `json:"lineups"`
	Goals         CategoryStats `json:"goals"`
	Cards         CategoryStats `json:"cards"`
	Substitutions CategoryStats `json:"substitutions"`
	Coaches       CategoryStats `json:"coaches"`
	Referees      CategoryStats `json:"referees"`
}

func (s *CommitStats) Add(other CommitStats) {
	s.Lineups.Add(other.Lineups)
	s.Goals.Add(other.Goals)
	s.Cards.Add(other.Cards)
	s.Substitutions.Add(other.Substitutions)
	s.Coaches.Add(other.Coaches)
	s.Referees.Add(other.Referees)
}

// Writer commits one fixture atomically. Validation or write failure rolls
// back the whole fixture and leaves earlier fixtures untouched.
type Writer interface {
	CommitFixture(ctx context.Context, fx *Fixture) (CommitStats, error)
}
