package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/clubarchiv/ingest/internal/domain/match"
)

// ErrLayoutMismatch marks documents whose structural markers are absent.
// The caller tries the next strategy or skips the unit with a warning.
var ErrLayoutMismatch = errors.New("document layout mismatch")

var (
	headerScorePattern = regexp.MustCompile(
		`^(.*?)\s+-\s+(.*?)\s+(\d{1,2})\s*:\s*(\d{1,2})\s*(?:\(\s*(\d{1,2})\s*:\s*(\d{1,2})\s*\))?\s*$`)
	headerNoScorePattern = regexp.MustCompile(`^(.*?)\s+-\s+([^-]+?)\s*$`)
	datePattern          = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	kickoffPattern       = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\s*Uhr\b`)
	attendancePattern    = regexp.MustCompile(`\b([\d.]+)\s*Zuschauer\b`)
	refereePattern       = regexp.MustCompile(`(?i)Schiedsrichter\s*:\s*([^(<,]+)`)
	coachPattern         = regexp.MustCompile(`(?i)(?:^|\s)Trainer\s*:`)
	coachLinePattern     = regexp.MustCompile(`(?i)^Trainer\s*:\s*(.+)$`)
	refereeLinePattern   = regexp.MustCompile(`(?i)^Schiedsrichter\s*:\s*(.+)$`)
	linesmanLinePattern  = regexp.MustCompile(`(?i)^Linienrichter\s*:\s*(.+)$`)
)

// LineupCell is one raw lineup entry: shirt number, name fragment and any
// card glyphs attached to the cell.
type LineupCell struct {
	Shirt int
	Name  string
	Cards []string
}

// LineupBlock is one side's raw lineup: starters plus the reserve bench.
type LineupBlock struct {
	Starters []LineupCell
	Reserves []LineupCell
}

// MatchSheet is the raw extraction of one fixture detail document, before
// reconciliation and entity resolution.
type MatchSheet struct {
	HomeTeam string
	AwayTeam string
	// nil scores represent unplayed or abandoned fixtures.
	FullTime *Score
	HalfTime *Score

	Date       *time.Time
	Kickoff    string
	Attendance int
	Referee    string
	Linesmen   []string
	HomeCoach  string
	AwayCoach  string

	Home LineupBlock
	Away LineupBlock

	Goals         []GoalEvent
	Substitutions []SubstitutionEvent
}

// ParseMatchDetail extracts a fixture detail document. Layout detection is
// an ordered strategy list because markers shifted across the decades.
func ParseMatchDetail(doc *goquery.Document) (*MatchSheet, error) {
	sheet := &MatchSheet{}

	if err := parseHeader(doc, sheet); err != nil {
		return nil, err
	}
	parseMetadata(doc, sheet)

	home, away, ok := locateLineups(doc)
	if !ok {
		return nil, errors.Wrap(ErrLayoutMismatch, "no lineup containers found")
	}
	sheet.Home = parseLineupTable(home)
	sheet.Away = parseLineupTable(away)

	sheet.HomeCoach, sheet.AwayCoach = parseCoaches(doc)
	sheet.Goals = parseGoalList(doc)
	sheet.Substitutions = parseSubstitutionList(doc)

	return sheet, nil
}

// parseHeader reads "<Team A> - <Team B> <h>:<a> (<hh>:<ha>)" from the
// first plausible heading. Missing scores are tolerated.
func parseHeader(doc *goquery.Document, sheet *MatchSheet) error {
	var headerText string
	for _, selector := range []string{"h1", "h2", "b", "title"} {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := collapseSpace(sel.Text())
			if strings.Contains(text, " - ") {
				headerText = text
				return false
			}
			return true
		})
		if headerText != "" {
			break
		}
	}
	if headerText == "" {
		return errors.Wrap(ErrLayoutMismatch, "no score header found")
	}

	if m := headerScorePattern.FindStringSubmatch(headerText); m != nil {
		sheet.HomeTeam = strings.TrimSpace(m[1])
		sheet.AwayTeam = strings.TrimSpace(m[2])
		home, _ := strconv.Atoi(m[3])
		away, _ := strconv.Atoi(m[4])
		sheet.FullTime = &Score{Home: home, Away: away}
		if m[5] != "" {
			halfHome, _ := strconv.Atoi(m[5])
			halfAway, _ := strconv.Atoi(m[6])
			sheet.HalfTime = &Score{Home: halfHome, Away: halfAway}
		}
		return nil
	}
	if m := headerNoScorePattern.FindStringSubmatch(headerText); m != nil {
		sheet.HomeTeam = strings.TrimSpace(m[1])
		sheet.AwayTeam = strings.TrimSpace(stripResultNote(m[2]))
		return nil
	}
	return errors.Wrapf(ErrLayoutMismatch, "unparseable header %q", headerText)
}

// stripResultNote drops trailing "ausgefallen" / "abgebrochen" notes from
// unplayed fixture headers.
func stripResultNote(s string) string {
	for _, note := range []string{"ausgefallen", "abgebrochen", "abgesagt"} {
		if idx := strings.Index(strings.ToLower(s), note); idx >= 0 {
			return s[:idx]
		}
	}
	return s
}

// parseMetadata reads the secondary info block. Two historical formats:
// date + attendance only, and date + kickoff + attendance.
func parseMetadata(doc *goquery.Document, sheet *MatchSheet) {
	text := collapseSpace(doc.Find("body").Text())

	if m := datePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		sheet.Date = &date
	}
	if m := kickoffPattern.FindStringSubmatch(text); m != nil {
		sheet.Kickoff = m[1] + ":" + m[2]
	}
	if m := attendancePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ".", "")); err == nil {
			sheet.Attendance = n
		}
	}
	if lines := labeledLines(doc, refereeLinePattern, 1); len(lines) > 0 {
		sheet.Referee = lines[0]
	} else if m := refereePattern.FindStringSubmatch(text); m != nil {
		sheet.Referee = strings.TrimSpace(m[1])
	}
	if lines := labeledLines(doc, linesmanLinePattern, 1); len(lines) > 0 {
		sheet.Linesmen = splitNameList(lines[0])
	}
}

// splitNameList splits "Meyer, Kuhn" or "Meyer und Kuhn" into names.
func splitNameList(s string) []string {
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(s, " und ", ","), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseCoaches reads the per-side coach lines, first encountered is home.
func parseCoaches(doc *goquery.Document) (home, away string) {
	lines := labeledLines(doc, coachLinePattern, 2)
	if len(lines) > 0 {
		home = lines[0]
	}
	if len(lines) > 1 {
		away = lines[1]
	}
	return home, away
}

// labeledLines collects "Label: value" values from individual rows and
// paragraphs. Scoping to elements keeps one label from swallowing the text
// of everything that follows it in the document.
func labeledLines(doc *goquery.Document, pattern *regexp.Regexp, limit int) []string {
	var out []string
	doc.Find("tr, p, li").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		m := pattern.FindStringSubmatch(collapseSpace(sel.Text()))
		if m == nil {
			return true
		}
		value := strings.TrimSpace(m[1])
		// trailing region or club note, "Krause (Essen)"
		if idx := strings.Index(value, "("); idx >= 0 {
			value = strings.TrimSpace(value[:idx])
		}
		if value != "" {
			out = append(out, value)
		}
		return len(out) < limit
	})
	return out
}

// lineupStrategy locates the two lineup containers, home side first.
type lineupStrategy func(doc *goquery.Document) (home, away *goquery.Selection, ok bool)

var lineupStrategies = []lineupStrategy{
	lineupsByClassMarker,
	lineupsByHeading,
	lineupsByReserveMarker,
}

func locateLineups(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, bool) {
	for _, strategy := range lineupStrategies {
		if home, away, ok := strategy(doc); ok {
			return home, away, true
		}
	}
	return nil, nil, false
}

// Primary marker: the nineties exports tag both tables class="aufstellung".
func lineupsByClassMarker(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, bool) {
	tables := doc.Find("table.aufstellung")
	if tables.Length() < 2 {
		return nil, nil, false
	}
	return tables.Eq(0), tables.Eq(1), true
}

// Secondary marker: tables following "Aufstellung" headings.
func lineupsByHeading(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, bool) {
	var found []*goquery.Selection
	doc.Find("h2, h3, b").Each(func(_ int, sel *goquery.Selection) {
		if !strings.Contains(strings.ToLower(sel.Text()), "aufstellung") {
			return
		}
		table := sel.NextAllFiltered("table").First()
		if table.Length() == 0 {
			table = sel.Parent().NextAllFiltered("table").First()
		}
		if table.Length() > 0 {
			found = append(found, table)
		}
	})
	if len(found) < 2 {
		return nil, nil, false
	}
	return found[0], found[1], true
}

// Last resort across the oldest eras: any table containing a reserve bench
// section marker is a lineup table.
func lineupsByReserveMarker(doc *goquery.Document) (*goquery.Selection, *goquery.Selection, bool) {
	var found []*goquery.Selection
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		text := strings.ToLower(table.Text())
		if strings.Contains(text, "ersatzbank") || strings.Contains(text, "reservebank") ||
			strings.Contains(text, "reserve:") {
			found = append(found, table)
		}
	})
	if len(found) < 2 {
		return nil, nil, false
	}
	return found[0], found[1], true
}

func isReserveMarker(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "ersatzbank" || t == "reservebank" || t == "reserve" || t == "reserve:"
}

// parseLineupTable walks one lineup table. Rows before the reserve marker
// are starters, rows after it the bench. Coach rows inside the table are
// skipped here and picked up by parseCoaches.
func parseLineupTable(table *goquery.Selection) LineupBlock {
	var block LineupBlock
	inReserves := false

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rowText := collapseSpace(row.Text())
		if isReserveMarker(rowText) {
			inReserves = true
			return
		}
		if rowText == "" || coachPattern.MatchString(rowText) {
			return
		}

		cell := LineupCell{}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		nameIdx := 0
		if cells.Length() > 1 {
			if shirt, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text())); err == nil {
				cell.Shirt = shirt
				nameIdx = 1
			}
		}
		cell.Name = collapseSpace(cells.Eq(nameIdx).Text())
		cell.Cards = cardMarks(row)
		if cell.Name == "" {
			return
		}
		if inReserves {
			block.Reserves = append(block.Reserves, cell)
		} else {
			block.Starters = append(block.Starters, cell)
		}
	})

	return block
}

// cardMarks reads icon-based card markers from a row or list item.
func cardMarks(sel *goquery.Selection) []string {
	var marks []string
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := strings.ToLower(img.AttrOr("src", ""))
		switch {
		case strings.Contains(src, "gelbrot") || strings.Contains(src, "gelb-rot") ||
			strings.Contains(src, "gelb_rot"):
			marks = append(marks, match.CardYellowRed)
		case strings.Contains(src, "gelb"):
			marks = append(marks, match.CardYellow)
		case strings.Contains(src, "rot"):
			marks = append(marks, match.CardRed)
		}
	})
	return marks
}

// parseGoalList reads the goal timeline: a list tagged class="tore", or
// any list following a "Tore" heading.
func parseGoalList(doc *goquery.Document) []GoalEvent {
	items := eventListItems(doc, "tore", "tore")
	var goals []GoalEvent
	for _, item := range items {
		if goal, ok := ParseGoalLine(collapseSpace(item.Text())); ok {
			goals = append(goals, goal)
		}
	}
	return goals
}

// parseSubstitutionList reads the substitution timeline and keeps card
// glyphs attached to a substitution entry.
func parseSubstitutionList(doc *goquery.Document) []SubstitutionEvent {
	items := eventListItems(doc, "wechsel", "wechsel")
	var subs []SubstitutionEvent
	for _, item := range items {
		sub, ok := ParseSubstitutionLine(collapseSpace(item.Text()))
		if !ok {
			continue
		}
		sub.Cards = cardMarks(item)
		subs = append(subs, sub)
	}
	return subs
}

// eventListItems locates timeline list items by class marker, falling back
// to the list following a heading containing the marker word.
func eventListItems(doc *goquery.Document, class, headingWord string) []*goquery.Selection {
	var items []*goquery.Selection
	list := doc.Find("ul." + class + ", ol." + class)
	if list.Length() == 0 {
		doc.Find("h2, h3, b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if !strings.Contains(strings.ToLower(sel.Text()), headingWord) {
				return true
			}
			candidate := sel.NextAllFiltered("ul, ol").First()
			if candidate.Length() == 0 {
				candidate = sel.Parent().NextAllFiltered("ul, ol").First()
			}
			if candidate.Length() > 0 {
				list = candidate
				return false
			}
			return true
		})
	}
	list.Find("li").Each(func(_ int, item *goquery.Selection) {
		items = append(items, item)
	})
	return items
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
