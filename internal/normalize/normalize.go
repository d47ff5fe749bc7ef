package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName marks fragments that must never become an entity. Callers
// drop the fragment and continue.
var ErrInvalidName = errors.New("invalid name fragment")

// Normalizer turns free-text name fragments into comparison keys. All
// methods are pure; the struct only carries compiled patterns.
type Normalizer struct {
	leadingNumber  *regexp.Regexp
	trailingDigits *regexp.Regexp
	rolePrefix     *regexp.Regexp
	goalLine       *regexp.Regexp
	handOff        *regexp.Regexp
	punctuation    *regexp.Regexp
	folder         transform.Transformer
}

func New() *Normalizer {
	return &Normalizer{
		// "7 Schulz", "(12) Schulz", "11. Schulz"
		leadingNumber: regexp.MustCompile(`^[(\[]?\d{1,3}[)\]]?\.?\s+`),
		// minute residue glued onto a name, "Schulz 78." or "Schulz (90.)"
		trailingDigits: regexp.MustCompile(`[\s(]*\d+[.')\s]*$`),
		rolePrefix:     regexp.MustCompile(`(?i)^(trainer|co-trainer|schiedsrichter|betreuer|linienrichter|sr)\s*:`),
		// "Tore ..." or a leading "<minute>. <h>:<a>" score pattern
		goalLine:    regexp.MustCompile(`(?i)^(tore?\b|\d{1,3}\.\s*\d{1,2}:\d{1,2})`),
		handOff:     regexp.MustCompile(`\s+an\s+`),
		punctuation: regexp.MustCompile(`[,;:"'*+#_/\\|]+`),
		folder:      transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Clean validates a raw fragment and returns its display form: numbers and
// punctuation stripped, whitespace collapsed, case and diacritics kept.
func (n *Normalizer) Clean(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.Wrap(ErrInvalidName, "empty fragment")
	}
	if n.rolePrefix.MatchString(s) {
		return "", errors.Wrapf(ErrInvalidName, "official role label %q", raw)
	}
	if n.goalLine.MatchString(s) {
		return "", errors.Wrapf(ErrInvalidName, "goal event text %q", raw)
	}

	// "Vorlage Meier an Schulz": the fragment after "an" is the name.
	if loc := n.handOff.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[loc[1]:])
	}

	s = n.leadingNumber.ReplaceAllString(s, "")
	s = n.trailingDigits.ReplaceAllString(s, "")
	s = n.punctuation.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")

	if s == "" || s == "-" || strings.HasPrefix(s, "?") {
		return "", errors.Wrapf(ErrInvalidName, "placeholder fragment %q", raw)
	}
	first := []rune(s)[0]
	if !unicode.IsLetter(first) {
		return "", errors.Wrapf(ErrInvalidName, "fragment %q does not start with a letter", raw)
	}
	if len([]rune(s)) < 2 || len([]rune(s)) > 100 {
		return "", errors.Wrapf(ErrInvalidName, "fragment %q has implausible length", raw)
	}

	return s, nil
}

// Key returns the normalized comparison key for a fragment: Clean, then
// diacritics folded to base letters and lower-cased.
func (n *Normalizer) Key(raw string) (string, error) {
	display, err := n.Clean(raw)
	if err != nil {
		return "", err
	}
	return n.Fold(display), nil
}

// Fold lowers case and folds diacritics without validating.
func (n *Normalizer) Fold(s string) string {
	s = strings.ReplaceAll(s, "ß", "ss")
	folded, _, err := transform.String(n.folder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
