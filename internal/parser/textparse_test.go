package parser

import "testing"

func TestParseMinute(t *testing.T) {
	cases := []struct {
		in       string
		minute   int
		stoppage int
		rest     string
		ok       bool
	}{
		{"45. 1:0 Schulz", 45, 0, "1:0 Schulz", true},
		{"90.+2 2:1 Maier", 90, 2, "2:1 Maier", true},
		{"90. +3 Ausgleich", 90, 3, "Ausgleich", true},
		{"7.", 7, 0, "", true},
		{"Schulz", 0, 0, "Schulz", false},
		{"", 0, 0, "", false},
		{":: garbage ::", 0, 0, ":: garbage ::", false},
	}
	for _, tc := range cases {
		clock, rest, ok := ParseMinute(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseMinute(%q) ok = %t, want %t", tc.in, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if clock.Minute != tc.minute || clock.Stoppage != tc.stoppage || rest != tc.rest {
			t.Fatalf("ParseMinute(%q) = (%d, %d, %q)", tc.in, clock.Minute, clock.Stoppage, rest)
		}
	}
}

func TestParseScore(t *testing.T) {
	score, rest, ok := ParseScore("2:1 Maier")
	if !ok || score.Home != 2 || score.Away != 1 || rest != "Maier" {
		t.Fatalf("ParseScore = (%v, %q, %t)", score, rest, ok)
	}

	for _, in := range []string{"", "Maier", "a:b", "2-1"} {
		if _, _, ok := ParseScore(in); ok {
			t.Fatalf("ParseScore(%q) ok, want no match", in)
		}
	}
}

func TestParseGoalLine(t *testing.T) {
	cases := []struct {
		in     string
		minute int
		score  Score
		scorer string
		assist string
		kind   string
	}{
		{"45. 1:0 Schulz", 45, Score{1, 0}, "Schulz", "", ""},
		{"90.+2 2:1 Maier (Foulelfmeter)", 90, Score{2, 1}, "Maier", "", "Foulelfmeter"},
		{"78. 1:2 Krause (Eigentor)", 78, Score{1, 2}, "Krause", "", "Eigentor"},
		{"63. 3:1 Vorlage Meier an Schulz", 63, Score{3, 1}, "Schulz", "Meier", ""},
		{"70. 4:1 Meier an Schulz", 70, Score{4, 1}, "Schulz", "Meier", ""},
		// own goals and penalties may carry no scorer name at all
		{"52. 1:1 (Eigentor)", 52, Score{1, 1}, "", "", "Eigentor"},
		{"45. 1:0 (Elfmeter)", 45, Score{1, 0}, "", "", "Elfmeter"},
	}
	for _, tc := range cases {
		goal, ok := ParseGoalLine(tc.in)
		if !ok {
			t.Fatalf("ParseGoalLine(%q) failed", tc.in)
		}
		if goal.Clock.Minute != tc.minute || goal.Score != tc.score ||
			goal.Scorer != tc.scorer || goal.Assist != tc.assist || goal.Kind != tc.kind {
			t.Fatalf("ParseGoalLine(%q) = %+v", tc.in, goal)
		}
	}

	junk := []string{"", "Tore", "45.", "45. Schulz", "1:0", "45. 1:0"}
	for _, in := range junk {
		if _, ok := ParseGoalLine(in); ok {
			t.Fatalf("ParseGoalLine(%q) ok, want no match", in)
		}
	}
}

func TestParseSubstitutionLine(t *testing.T) {
	sub, ok := ParseSubstitutionLine("60. Weber für Schulz")
	if !ok {
		t.Fatalf("ParseSubstitutionLine failed")
	}
	if sub.Clock.Minute != 60 || sub.In != "Weber" || sub.Out != "Schulz" {
		t.Fatalf("ParseSubstitutionLine = %+v", sub)
	}

	sub, ok = ParseSubstitutionLine("90.+1 Hans Maier für Jürgen Köhler")
	if !ok || sub.Clock.Stoppage != 1 || sub.In != "Hans Maier" || sub.Out != "Jürgen Köhler" {
		t.Fatalf("ParseSubstitutionLine stoppage = %+v, ok=%t", sub, ok)
	}

	for _, in := range []string{"", "60.", "Weber für Schulz", "60. Weber"} {
		if _, ok := ParseSubstitutionLine(in); ok {
			t.Fatalf("ParseSubstitutionLine(%q) ok, want no match", in)
		}
	}
}

func TestGoalMarkers(t *testing.T) {
	if !IsPenaltyMarker("Foulelfmeter") || !IsPenaltyMarker("Elfmeter") || !IsPenaltyMarker("Strafstoß") {
		t.Fatalf("penalty markers not recognized")
	}
	if IsPenaltyMarker("Eigentor") || IsPenaltyMarker("") {
		t.Fatalf("false positive penalty marker")
	}
	if !IsOwnGoalMarker("Eigentor") {
		t.Fatalf("own goal marker not recognized")
	}
	if IsOwnGoalMarker("Elfmeter") {
		t.Fatalf("false positive own goal marker")
	}
}
