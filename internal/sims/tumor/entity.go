package tumor

import (
	"fmt"
	"image/color"
	"strings"
)

// Kind enumerates the entity variants that can occupy a grid cell.
type Kind uint8

const (
	KindBiological Kind = iota
	KindCancer
	KindQuiescent
	KindNecrotic
	KindClonogenicStem
	KindTrueStem
	KindImmune

	kindCount
)

var kindNames = [kindCount]string{
	KindBiological:     "biological",
	KindCancer:         "cancer",
	KindQuiescent:      "quiescent",
	KindNecrotic:       "necrotic",
	KindClonogenicStem: "clonogenic_stem",
	KindTrueStem:       "true_stem",
	KindImmune:         "immune",
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind name as written in scenario files. "rtc" is
// accepted as an alias for cancer.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "rtc" {
		return KindCancer, nil
	}
	for k, s := range kindNames {
		if s == n {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Cancerous reports whether the kind is a living tumor cell. Necrotic tissue
// is tumor mass but no longer counts as a target or as a proliferating cell.
func (k Kind) Cancerous() bool {
	switch k {
	case KindCancer, KindQuiescent, KindClonogenicStem, KindTrueStem:
		return true
	}
	return false
}

// Stem reports whether the kind is one of the immortal stem variants.
func (k Kind) Stem() bool { return k == KindClonogenicStem || k == KindTrueStem }

// Proliferating reports whether the kind actively divides.
func (k Kind) Proliferating() bool { return k == KindCancer || k.Stem() }

type sensitivity uint8

const (
	drugResistant sensitivity = iota
	drugProliferating
	drugQuiescent
)

// behavior is the per-kind rule table consulted by the transition function.
type behavior struct {
	apoptosis     float64
	proliferation float64
	// radial makes the proliferation probability p0*(1 - r/Rmax) instead of
	// the fixed value above.
	radial    bool
	migration float64
	drug      sensitivity
	lo, hi    color.RGBA
}

var behaviors = [kindCount]behavior{
	KindBiological: {
		apoptosis:     0.001,
		proliferation: 0.047,
		migration:     0.1,
		lo:            color.RGBA{R: 110, G: 110, B: 110, A: 255},
		hi:            color.RGBA{R: 255, G: 255, B: 255, A: 255},
	},
	KindCancer: {
		apoptosis: 0.001,
		radial:    true,
		migration: 0.12,
		drug:      drugProliferating,
		lo:        color.RGBA{R: 90, G: 0, B: 0, A: 255},
		hi:        color.RGBA{R: 255, G: 0, B: 0, A: 255},
	},
	KindQuiescent: {
		apoptosis: 0.001,
		drug:      drugQuiescent,
		lo:        color.RGBA{R: 40, G: 40, B: 140, A: 255},
		hi:        color.RGBA{R: 90, G: 90, B: 255, A: 255},
	},
	KindNecrotic: {
		lo: color.RGBA{R: 70, G: 60, B: 50, A: 255},
		hi: color.RGBA{R: 70, G: 60, B: 50, A: 255},
	},
	KindClonogenicStem: {
		radial:    true,
		migration: 0.1,
		lo:        color.RGBA{R: 120, G: 120, B: 25, A: 255},
		hi:        color.RGBA{R: 255, G: 255, B: 51, A: 255},
	},
	KindTrueStem: {
		radial:    true,
		migration: 0.1,
		lo:        color.RGBA{R: 120, G: 25, B: 120, A: 255},
		hi:        color.RGBA{R: 255, G: 51, B: 255, A: 255},
	},
	KindImmune: {
		lo: color.RGBA{R: 0, G: 200, B: 90, A: 255},
		hi: color.RGBA{R: 0, G: 200, B: 90, A: 255},
	},
}

// Entity is a biological or immune actor occupying one cell. It carries no
// reference to its cell; the automaton supplies the spatial context on every
// transition.
type Entity struct {
	Kind      Kind
	Potential int
	Energy    int
	// Age counts the transitions this entity has gone through.
	Age int
}

// NewEntity returns an entity of the given kind and proliferation potential.
func NewEntity(kind Kind, potential int) *Entity {
	if potential < 0 {
		potential = 0
	}
	return &Entity{Kind: kind, Potential: potential}
}

// Color interpolates between the kind's two endpoints by the remaining
// proliferation potential relative to maxPotential.
func (e *Entity) Color(maxPotential int) color.RGBA {
	b := behaviors[e.Kind%kindCount]
	t := 1.0
	if maxPotential > 0 {
		t = float64(e.Potential) / float64(maxPotential)
	}
	return lerpRGBA(b.lo, b.hi, t)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
