package team

import "strings"

const (
	KindClub   = "CLUB"
	KindSelect = "SELECT"
)

// Team is one club or selection side referenced by the archive.
type Team struct {
	ID        int64
	Name      string
	Key       string
	Kind      string
	SourceURL string
}

// ClassifyKind derives the team kind from its name. Anniversary and
// farewell fixtures pit the club against representative selections
// ("Stadtauswahl Bochum") rather than clubs.
func ClassifyKind(name string) string {
	if strings.Contains(strings.ToLower(name), "auswahl") {
		return KindSelect
	}
	return KindClub
}
