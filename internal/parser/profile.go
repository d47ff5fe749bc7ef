package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/clubarchiv/ingest/internal/domain/person"
)

var (
	heightPattern   = regexp.MustCompile(`(\d{3})\s*cm`)
	weightPattern   = regexp.MustCompile(`(\d{2,3})\s*kg`)
	yearSpanPattern = regexp.MustCompile(`^(\d{4})\s*[-–]\s*(\d{4})?\s+(.+)$`)
)

// ParseProfile reads a standalone biography document. Labels vary across
// eras, so lookup is by label prefix over every table row and definition
// pair in the document.
func ParseProfile(doc *goquery.Document) (string, person.Profile, error) {
	name := collapseSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = collapseSpace(doc.Find("title").First().Text())
	}
	if name == "" {
		return "", person.Profile{}, errors.Wrap(ErrLayoutMismatch, "biography without a name heading")
	}

	profile := person.Profile{}
	eachLabeledValue(doc, func(label, value string) {
		switch {
		case strings.HasPrefix(label, "geboren"), strings.HasPrefix(label, "geburtstag"):
			if date := parseGermanDate(value); date != nil {
				profile.BirthDate = date
			}
			// "01.02.1950 in Bochum" keeps the place behind "in"
			if _, place, found := strings.Cut(value, " in "); found {
				profile.BirthPlace = strings.TrimSpace(place)
			}
		case strings.HasPrefix(label, "geburtsort"):
			profile.BirthPlace = value
		case strings.HasPrefix(label, "größe"), strings.HasPrefix(label, "groesse"):
			if m := heightPattern.FindStringSubmatch(value); m != nil {
				profile.HeightCM, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(label, "gewicht"):
			if m := weightPattern.FindStringSubmatch(value); m != nil {
				profile.WeightKG, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(label, "position"):
			profile.Position = value
		case strings.HasPrefix(label, "nationalität"), strings.HasPrefix(label, "nationalitaet"):
			profile.Nationality = value
		}
	})

	profile.Career = parseCareer(doc)
	return name, profile, nil
}

// eachLabeledValue visits "Label: value" pairs in tables and paragraphs.
func eachLabeledValue(doc *goquery.Document, visit func(label, value string)) {
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSuffix(collapseSpace(cells.Eq(0).Text()), ":"))
		value := collapseSpace(cells.Eq(1).Text())
		if label != "" && value != "" {
			visit(label, value)
		}
	})
	doc.Find("p, li").Each(func(_ int, p *goquery.Selection) {
		text := collapseSpace(p.Text())
		label, value, found := strings.Cut(text, ":")
		if !found {
			return
		}
		visit(strings.ToLower(strings.TrimSpace(label)), strings.TrimSpace(value))
	})
}

// parseCareer reads career history rows: "1950-1955 VfB Beispiel" with an
// optional trailing role.
func parseCareer(doc *goquery.Document) []person.CareerEntry {
	var career []person.CareerEntry
	seen := make(map[string]struct{})

	doc.Find("tr, li").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		m := yearSpanPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}

		entry := person.CareerEntry{Club: strings.TrimSpace(m[3])}
		entry.FromYear, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			entry.ToYear, _ = strconv.Atoi(m[2])
		}
		if club, role, found := strings.Cut(entry.Club, "("); found {
			entry.Club = strings.TrimSpace(club)
			entry.Role = strings.TrimSuffix(strings.TrimSpace(role), ")")
		}
		career = append(career, entry)
	})

	return career
}
