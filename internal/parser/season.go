package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	stagePattern = regexp.MustCompile(`(?i)^(\d+\. runde|vorrunde|zwischenrunde|achtelfinale|viertelfinale|halbfinale|finale|gruppenspiel.*|hinspiel|rückspiel)$`)
	matchdayHead = regexp.MustCompile(`(?i)\b(\d+)\.\s*spieltag\b`)
)

// FixtureStub is one fixture row from a competition overview document,
// before the detail document is parsed.
type FixtureStub struct {
	// DetailPath is empty when the stub was reconstructed from a secondary
	// tabular document and no detail document exists.
	DetailPath string
	Opponent   string
	ScoreText  string
	Matchday   int
	Stage      string
	Date       *time.Time
	// HomeGame is only known for reconstructed stubs; detail documents
	// carry the sides in their header.
	HomeGame bool
}

// CompetitionName extracts the competition name from an overview document
// heading, falling back to the given default.
func CompetitionName(doc *goquery.Document, fallback string) string {
	for _, selector := range []string{"h1", "h2", "title"} {
		text := collapseSpace(doc.Find(selector).First().Text())
		if text != "" {
			// headings carry the season label too: "Bezirksliga 1965-66"
			text = regexp.MustCompile(`\s+\d{4}-\d{2}\s*$`).ReplaceAllString(text, "")
			return text
		}
	}
	return fallback
}

// ParseSeasonIndex walks an overview document's fixture table. League rows
// get sequential matchday numbers in document order; cup, continental and
// friendly rows carry a stage label instead.
func ParseSeasonIndex(doc *goquery.Document, isLeague bool) []FixtureStub {
	var stubs []FixtureStub
	matchday := 0

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(`a[href$=".htm"], a[href$=".html"]`).First()
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" {
			return
		}

		stub := FixtureStub{DetailPath: href}
		cells := row.Find("td")
		cells.Each(func(_ int, cell *goquery.Selection) {
			text := collapseSpace(cell.Text())
			switch {
			case text == "" || cell.Find("a").Length() > 0:
			case parseGermanDate(text) != nil:
				stub.Date = parseGermanDate(text)
			case isScoreText(text):
				stub.ScoreText = text
			case stagePattern.MatchString(text):
				stub.Stage = text
			case isRowNumber(text):
			default:
				if stub.Opponent == "" {
					stub.Opponent = text
				}
			}
		})

		if isLeague {
			matchday++
			stub.Matchday = matchday
		}
		stubs = append(stubs, stub)
	})

	return stubs
}

// ReconstructFromTables rebuilds fixture stubs from a per-matchday tabular
// document when the overview is malformed or absent. Rows look like
// "SV Westfalia 04 - FC Beispiel 2:1"; the side the club appears on decides
// home or away.
func ReconstructFromTables(doc *goquery.Document, inferrer SideInferrer) []FixtureStub {
	var stubs []FixtureStub
	matchday := matchdayFromHeading(doc)

	doc.Find("table tr, li, p").Each(func(_ int, row *goquery.Selection) {
		text := collapseSpace(row.Text())
		if text == "" || !strings.Contains(text, " - ") {
			return
		}

		stub := FixtureStub{Matchday: matchday}
		if date := parseGermanDate(text); date != nil {
			stub.Date = date
			text = strings.Replace(text, datePattern.FindString(text), "", 1)
			text = collapseSpace(text)
		}
		if score, rest, ok := trailingScore(text); ok {
			stub.ScoreText = score
			text = rest
		}

		home, opponent, ok := inferrer.Infer(text)
		if !ok {
			return
		}
		stub.HomeGame = home
		stub.Opponent = opponent
		stubs = append(stubs, stub)
	})

	return stubs
}

// StandingsRow is the archived club's standings snapshot in a matchday
// table document.
type StandingsRow struct {
	Matchday     int
	Date         *time.Time
	Position     int
	Points       int
	GoalsFor     int
	GoalsAgainst int
}

// ParseStandingsTable finds the archived club's row in a standings table.
// Expected columns: position, team, games, goals for:against, points.
func ParseStandingsTable(doc *goquery.Document, isClub func(string) bool) (StandingsRow, bool) {
	row := StandingsRow{Matchday: matchdayFromHeading(doc)}
	if date := parseGermanDate(doc.Find("body").Text()); date != nil {
		row.Date = date
	}

	found := false
	doc.Find("table tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 4 {
			return true
		}
		var clubCell int = -1
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			if isClub(collapseSpace(cell.Text())) {
				clubCell = i
				return false
			}
			return true
		})
		if clubCell < 0 {
			return true
		}

		if pos, err := strconv.Atoi(strings.TrimSuffix(collapseSpace(cells.Eq(0).Text()), ".")); err == nil {
			row.Position = pos
		}
		// the goals column comes before the points column; in the two-point
		// era points are a ratio and look score-shaped themselves
		gotGoals := false
		for i := clubCell + 1; i < cells.Length(); i++ {
			text := collapseSpace(cells.Eq(i).Text())
			if score, _, ok := ParseScore(text); ok && isScoreText(text) {
				if !gotGoals {
					row.GoalsFor = score.Home
					row.GoalsAgainst = score.Away
					gotGoals = true
				} else {
					row.Points = score.Home
				}
				continue
			}
			if pts, err := strconv.Atoi(text); err == nil {
				row.Points = pts
			}
		}
		found = true
		return false
	})

	return row, found
}

// SquadRow is one declared squad member on a season squad page.
type SquadRow struct {
	Name          string
	PositionGroup string
	ShirtNumber   int
}

var positionGroups = map[string]string{
	"tor":        "GK",
	"torhüter":   "GK",
	"abwehr":     "DEF",
	"verteidigung": "DEF",
	"mittelfeld": "MID",
	"sturm":      "FWD",
	"angriff":    "FWD",
}

// ParseSquadPage reads a season squad document: position group headings
// followed by player rows with shirt number and name.
func ParseSquadPage(doc *goquery.Document) []SquadRow {
	var rows []SquadRow
	group := ""

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		text := strings.ToLower(collapseSpace(tr.Text()))
		if g, ok := positionGroups[strings.TrimSuffix(text, ":")]; ok {
			group = g
			return
		}

		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := SquadRow{PositionGroup: group}
		nameIdx := 0
		if cells.Length() > 1 {
			if shirt, err := strconv.Atoi(collapseSpace(cells.Eq(0).Text())); err == nil {
				row.ShirtNumber = shirt
				nameIdx = 1
			}
		}
		row.Name = collapseSpace(cells.Eq(nameIdx).Text())
		if row.Name != "" {
			rows = append(rows, row)
		}
	})

	return rows
}

func matchdayFromHeading(doc *goquery.Document) int {
	for _, selector := range []string{"h1", "h2", "title", "b"} {
		if m := matchdayHead.FindStringSubmatch(doc.Find(selector).First().Text()); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

func parseGermanDate(text string) *time.Time {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &date
}

func isScoreText(text string) bool {
	_, rest, ok := ParseScore(text)
	return ok && strings.TrimSpace(rest) == ""
}

func isRowNumber(text string) bool {
	_, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(text), "."))
	return err == nil
}

func trailingScore(text string) (string, string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", text, false
	}
	last := fields[len(fields)-1]
	if isScoreText(last) {
		return last, strings.TrimSpace(strings.TrimSuffix(text, last)), true
	}
	return "", text, false
}
