package team

import "testing"

func TestClassifyKind(t *testing.T) {
	cases := map[string]string{
		"FC Beispiel":         KindClub,
		"SV Westfalia 04":     KindClub,
		"Stadtauswahl Bochum": KindSelect,
		"Westfalenauswahl":    KindSelect,
	}
	for name, want := range cases {
		if got := ClassifyKind(name); got != want {
			t.Fatalf("ClassifyKind(%q) = %q, want %q", name, got, want)
		}
	}
}
