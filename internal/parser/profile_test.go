package parser

import (
	"testing"

	"github.com/cockroachdb/errors"
)

const biographyDocument = `<html>
<head><title>Hans Schulz</title></head>
<body>
<h1>Hans Schulz</h1>
<table>
<tr><td>Geboren:</td><td>01.02.1950 in Bochum</td></tr>
<tr><td>Größe:</td><td>182 cm</td></tr>
<tr><td>Gewicht:</td><td>78 kg</td></tr>
<tr><td>Position:</td><td>Sturm</td></tr>
<tr><td>Nationalität:</td><td>deutsch</td></tr>
</table>
<h3>Stationen</h3>
<ul>
<li>1968-1972 VfB Probe</li>
<li>1972-1980 SV Westfalia 04</li>
<li>1981- TuS Muster (Trainer)</li>
</ul>
</body>
</html>`

func TestParseProfile(t *testing.T) {
	name, profile, err := ParseProfile(docFromHTML(t, biographyDocument))
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}

	if name != "Hans Schulz" {
		t.Fatalf("name = %q", name)
	}
	if profile.BirthDate == nil || profile.BirthDate.Year() != 1950 {
		t.Fatalf("birth date = %v", profile.BirthDate)
	}
	if profile.BirthPlace != "Bochum" {
		t.Fatalf("birth place = %q", profile.BirthPlace)
	}
	if profile.HeightCM != 182 || profile.WeightKG != 78 {
		t.Fatalf("measurements = %d cm, %d kg", profile.HeightCM, profile.WeightKG)
	}
	if profile.Position != "Sturm" || profile.Nationality != "deutsch" {
		t.Fatalf("position/nationality = %q / %q", profile.Position, profile.Nationality)
	}

	if len(profile.Career) != 3 {
		t.Fatalf("career = %d entries", len(profile.Career))
	}
	if profile.Career[0].FromYear != 1968 || profile.Career[0].ToYear != 1972 ||
		profile.Career[0].Club != "VfB Probe" {
		t.Fatalf("first entry = %+v", profile.Career[0])
	}
	if profile.Career[2].ToYear != 0 || profile.Career[2].Role != "Trainer" {
		t.Fatalf("open-ended entry = %+v", profile.Career[2])
	}
}

func TestParseProfile_TitleFallbackAndMissingName(t *testing.T) {
	doc := docFromHTML(t, `<html><head><title>Otto Lange</title></head><body><p>Position: Trainer</p></body></html>`)
	name, _, err := ParseProfile(doc)
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	if name != "Otto Lange" {
		t.Fatalf("name = %q", name)
	}

	empty := docFromHTML(t, `<html><body><p>nichts</p></body></html>`)
	if _, _, err := ParseProfile(empty); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("want ErrLayoutMismatch, got %v", err)
	}
}
