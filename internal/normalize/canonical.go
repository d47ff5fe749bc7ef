package normalize

// The archived club appears under a handful of historical spellings across
// the decades. Every variant must resolve to one Team record, so team
// resolution rewrites any of them to the canonical name before computing
// the key.

const DefaultClubName = "SV Westfalia 04"

var DefaultClubVariants = []string{
	"SV Westfalia 04",
	"SV Westfalia",
	"Westfalia 04",
	"Sportverein Westfalia 04",
	"SV Westfalia 1904",
	"SpVg Westfalia 04",
}

// ClubCanonicalizer rewrites historical club name variants to one fixed
// representative name. Matching is key-exact after folding.
type ClubCanonicalizer struct {
	canonical string
	variants  map[string]struct{}
	norm      *Normalizer
}

func NewClubCanonicalizer(norm *Normalizer, canonical string, variants []string) *ClubCanonicalizer {
	c := &ClubCanonicalizer{
		canonical: canonical,
		variants:  make(map[string]struct{}, len(variants)+1),
		norm:      norm,
	}
	c.variants[norm.Fold(canonical)] = struct{}{}
	for _, v := range variants {
		c.variants[norm.Fold(v)] = struct{}{}
	}
	return c
}

func NewDefaultClubCanonicalizer(norm *Normalizer) *ClubCanonicalizer {
	return NewClubCanonicalizer(norm, DefaultClubName, DefaultClubVariants)
}

// Apply returns the canonical club name when the input is a known variant,
// otherwise the input unchanged.
func (c *ClubCanonicalizer) Apply(name string) string {
	if _, ok := c.variants[c.norm.Fold(name)]; ok {
		return c.canonical
	}
	return name
}

// CanonicalName returns the fixed representative club name.
func (c *ClubCanonicalizer) CanonicalName() string {
	return c.canonical
}

// IsClub reports whether the name is the archived club under any variant.
func (c *ClubCanonicalizer) IsClub(name string) bool {
	_, ok := c.variants[c.norm.Fold(name)]
	return ok
}
