// Package chemistry holds the sugar and dairy constants used by the
// composition model.
//
// Sucrose-equivalence (anti-freezing) factors and relative sweetness follow
// Goff & Hartel, Ice Cream (7th ed.), ch. 6 and the POD/PAC tables commonly
// used in Italian gelato balancing. Milk ratios follow the same text: MSNF is
// taken as roughly 36% protein, 54.5% lactose and the remainder mineral salts.
package chemistry

// Sugar identifies a sugar species tracked by the model.
type Sugar string

// Sugar species.
const (
	Sucrose          Sugar = "sucrose"
	Dextrose         Sugar = "dextrose"
	Fructose         Sugar = "fructose"
	Invert           Sugar = "invert"
	Lactose          Sugar = "lactose"
	Oligosaccharides Sugar = "oligosaccharides"
)

// Sugars lists every species in a fixed order.
var Sugars = []Sugar{Sucrose, Dextrose, Fructose, Invert, Lactose, Oligosaccharides}

// Properties describes how a sugar species behaves relative to sucrose.
type Properties struct {
	// SE is the sucrose-equivalent freezing point factor (sucrose = 1.0).
	SE float64
	// POD is relative sweetness (sucrose = 100).
	POD float64
	// Monosaccharide marks species counted towards the monosaccharide share.
	Monosaccharide bool
}

var table = map[Sugar]Properties{
	Sucrose:          {SE: 1.0, POD: 100},
	Dextrose:         {SE: 1.9, POD: 70, Monosaccharide: true},
	Fructose:         {SE: 1.9, POD: 173, Monosaccharide: true},
	Invert:           {SE: 1.9, POD: 130, Monosaccharide: true},
	Lactose:          {SE: 1.0, POD: 16},
	Oligosaccharides: {SE: 1.0, POD: 25},
}

// Lookup returns the properties of a sugar species.
func Lookup(s Sugar) (Properties, bool) {
	p, ok := table[s]
	return p, ok
}

// MustLookup returns the properties of a known sugar species and panics for
// anything else.
func MustLookup(s Sugar) Properties {
	p, ok := table[s]
	if !ok {
		panic("chemistry: unknown sugar " + string(s))
	}
	return p
}

// Dairy ratios applied to MSNF.
const (
	ProteinFraction = 0.36
	LactoseFraction = 0.545
)

// SaltsFactor is the Goff & Hartel constant for the freezing point
// depression caused by milk salts: FPDSA = MSNF% * SaltsFactor / water%.
const SaltsFactor = 2.37

// Warning thresholds on mix composition.
const (
	// LactoseCrystallizationPct is the lactose level, as % of mix, above which
	// sandiness becomes likely.
	LactoseCrystallizationPct = 11.0
	// ProteinChewinessPct is the protein level, as % of mix, above which the
	// texture turns chewy.
	ProteinChewinessPct = 5.0
	// MonosaccharideShareLimit is the highest share of total sugars that may
	// be monosaccharides before the sugar spectrum is unbalanced.
	MonosaccharideShareLimit = 0.25
)

// DESplit splits glucose syrup solids with the given dextrose equivalent
// into a dextrose-like fraction and an oligosaccharide fraction. DE is
// clamped to [0, 100].
func DESplit(de float64) (dextrose, oligo float64) {
	if de < 0 {
		de = 0
	}
	if de > 100 {
		de = 100
	}
	dextrose = de / 100
	return dextrose, 1 - dextrose
}
