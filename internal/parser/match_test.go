package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/clubarchiv/ingest/internal/domain/match"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test document: %v", err)
	}
	return doc
}

const detailDocument = `<html>
<head><title>SV Westfalia 04 - FC Beispiel 2:1</title></head>
<body>
<h1>SV Westfalia 04 - FC Beispiel 2:1 (1:0)</h1>
<p>Sonntag, 14.09.1975, 15:00 Uhr, 1.200 Zuschauer</p>
<p>Schiedsrichter: Krause (Essen)</p>
<p>Linienrichter: Meyer, Kuhn</p>
<table class="aufstellung">
<tr><td>1</td><td>Lehmann</td></tr>
<tr><td>4</td><td>Weber <img src="/icons/gelb.gif"></td></tr>
<tr><td>9</td><td>Schulz</td></tr>
<tr><td colspan="2">Ersatzbank</td></tr>
<tr><td>12</td><td>Neumann</td></tr>
<tr><td colspan="2">Trainer: Hans Meier</td></tr>
</table>
<table class="aufstellung">
<tr><td>1</td><td>Berger</td></tr>
<tr><td>10</td><td>Krämer <img src="/icons/rot.gif"></td></tr>
<tr><td colspan="2">Ersatzbank</td></tr>
<tr><td>14</td><td>Vogel</td></tr>
<tr><td colspan="2">Trainer: Otto Lange</td></tr>
</table>
<h3>Tore</h3>
<ul class="tore">
<li>23. 1:0 Schulz</li>
<li>61. 1:1 Krämer (Foulelfmeter)</li>
<li>88. 2:1 Schulz</li>
</ul>
<h3>Wechsel</h3>
<ul class="wechsel">
<li>70. Neumann für Weber</li>
</ul>
</body>
</html>`

func TestParseMatchDetail(t *testing.T) {
	sheet, err := ParseMatchDetail(docFromHTML(t, detailDocument))
	if err != nil {
		t.Fatalf("ParseMatchDetail: %v", err)
	}

	if sheet.HomeTeam != "SV Westfalia 04" || sheet.AwayTeam != "FC Beispiel" {
		t.Fatalf("teams = %q / %q", sheet.HomeTeam, sheet.AwayTeam)
	}
	if sheet.FullTime == nil || *sheet.FullTime != (Score{2, 1}) {
		t.Fatalf("full time = %v", sheet.FullTime)
	}
	if sheet.HalfTime == nil || *sheet.HalfTime != (Score{1, 0}) {
		t.Fatalf("half time = %v", sheet.HalfTime)
	}
	if sheet.Date == nil || sheet.Date.Year() != 1975 || int(sheet.Date.Month()) != 9 {
		t.Fatalf("date = %v", sheet.Date)
	}
	if sheet.Kickoff != "15:00" {
		t.Fatalf("kickoff = %q", sheet.Kickoff)
	}
	if sheet.Attendance != 1200 {
		t.Fatalf("attendance = %d", sheet.Attendance)
	}
	if !strings.HasPrefix(sheet.Referee, "Krause") {
		t.Fatalf("referee = %q", sheet.Referee)
	}
	if len(sheet.Linesmen) != 2 || sheet.Linesmen[0] != "Meyer" || sheet.Linesmen[1] != "Kuhn" {
		t.Fatalf("linesmen = %v", sheet.Linesmen)
	}
	if sheet.HomeCoach != "Hans Meier" || sheet.AwayCoach != "Otto Lange" {
		t.Fatalf("coaches = %q / %q", sheet.HomeCoach, sheet.AwayCoach)
	}

	if len(sheet.Home.Starters) != 3 || len(sheet.Home.Reserves) != 1 {
		t.Fatalf("home lineup = %d starters, %d reserves", len(sheet.Home.Starters), len(sheet.Home.Reserves))
	}
	if sheet.Home.Starters[1].Name != "Weber" || sheet.Home.Starters[1].Shirt != 4 {
		t.Fatalf("home starter = %+v", sheet.Home.Starters[1])
	}
	if len(sheet.Home.Starters[1].Cards) != 1 || sheet.Home.Starters[1].Cards[0] != match.CardYellow {
		t.Fatalf("home card marks = %v", sheet.Home.Starters[1].Cards)
	}
	if len(sheet.Away.Starters) != 2 || sheet.Away.Starters[1].Cards[0] != match.CardRed {
		t.Fatalf("away lineup = %+v", sheet.Away.Starters)
	}

	if len(sheet.Goals) != 3 {
		t.Fatalf("goals = %d", len(sheet.Goals))
	}
	if sheet.Goals[1].Scorer != "Krämer" || sheet.Goals[1].Kind != "Foulelfmeter" {
		t.Fatalf("second goal = %+v", sheet.Goals[1])
	}
	if len(sheet.Substitutions) != 1 || sheet.Substitutions[0].In != "Neumann" {
		t.Fatalf("substitutions = %+v", sheet.Substitutions)
	}
}

func TestParseMatchDetail_NoScoreHeader(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
<h1>SV Westfalia 04 - FC Beispiel ausgefallen</h1>
<table class="aufstellung"><tr><td>1</td><td>Lehmann</td></tr></table>
<table class="aufstellung"><tr><td>1</td><td>Berger</td></tr></table>
</body></html>`)

	sheet, err := ParseMatchDetail(doc)
	if err != nil {
		t.Fatalf("ParseMatchDetail: %v", err)
	}
	if sheet.FullTime != nil {
		t.Fatalf("expected nil score for unplayed fixture, got %v", sheet.FullTime)
	}
	if sheet.AwayTeam != "FC Beispiel" {
		t.Fatalf("away team = %q", sheet.AwayTeam)
	}
}

func TestParseMatchDetail_HeadingFallbackLineups(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
<b>SV Westfalia 04 - FC Beispiel 1:1</b>
<h3>Aufstellung SV Westfalia 04</h3>
<table><tr><td>1</td><td>Lehmann</td></tr><tr><td>Reserve:</td></tr><tr><td>12</td><td>Neumann</td></tr></table>
<h3>Aufstellung FC Beispiel</h3>
<table><tr><td>1</td><td>Berger</td></tr></table>
</body></html>`)

	sheet, err := ParseMatchDetail(doc)
	if err != nil {
		t.Fatalf("ParseMatchDetail: %v", err)
	}
	if len(sheet.Home.Starters) != 1 || sheet.Home.Starters[0].Name != "Lehmann" {
		t.Fatalf("home starters = %+v", sheet.Home.Starters)
	}
	if len(sheet.Home.Reserves) != 1 || sheet.Home.Reserves[0].Name != "Neumann" {
		t.Fatalf("home reserves = %+v", sheet.Home.Reserves)
	}
}

func TestParseMatchDetail_LayoutMismatch(t *testing.T) {
	doc := docFromHTML(t, `<html><body><p>nothing here</p></body></html>`)
	if _, err := ParseMatchDetail(doc); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("want ErrLayoutMismatch, got %v", err)
	}

	doc = docFromHTML(t, `<html><body><h1>SV Westfalia 04 - FC Beispiel 1:0</h1></body></html>`)
	if _, err := ParseMatchDetail(doc); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("want ErrLayoutMismatch for missing lineups, got %v", err)
	}
}

func TestParseMatchDetail_OldMetadataFormat(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
<h2>SV Westfalia 04 - FC Beispiel 3:2</h2>
<p>05.03.1952 - 800 Zuschauer</p>
<table class="aufstellung"><tr><td>Lehmann</td></tr></table>
<table class="aufstellung"><tr><td>Berger</td></tr></table>
</body></html>`)

	sheet, err := ParseMatchDetail(doc)
	if err != nil {
		t.Fatalf("ParseMatchDetail: %v", err)
	}
	if sheet.Kickoff != "" {
		t.Fatalf("kickoff = %q, want empty for old format", sheet.Kickoff)
	}
	if sheet.Attendance != 800 {
		t.Fatalf("attendance = %d", sheet.Attendance)
	}
	if sheet.Date == nil || sheet.Date.Year() != 1952 {
		t.Fatalf("date = %v", sheet.Date)
	}
	// single-cell rows have no shirt column
	if sheet.Home.Starters[0].Shirt != 0 || sheet.Home.Starters[0].Name != "Lehmann" {
		t.Fatalf("starter = %+v", sheet.Home.Starters[0])
	}
}
