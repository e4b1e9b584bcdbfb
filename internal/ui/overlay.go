//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"tumor-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type geometryProvider interface {
	Geometry() (cx, cy int, rt, rim, rn float64)
}

// Overlay draws the tumor's characteristic radii on top of the grid: the
// mean edge radius, the inner edge of the proliferating rim and the necrotic
// radius. Keys 1-3 toggle them.
type Overlay struct {
	sim   core.Sim
	scale int
	show  [3]bool
	pixel *ebiten.Image
}

var ringColors = [3]color.RGBA{
	{R: 255, G: 255, B: 255, A: 200},
	{R: 255, G: 165, B: 0, A: 200},
	{R: 120, G: 120, B: 255, A: 200},
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the rings.
func (o *Overlay) Update() {
	for i, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3} {
		if inpututil.IsKeyJustPressed(key) {
			o.show[i] = !o.show[i]
		}
	}
}

// Draw renders the enabled rings onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(geometryProvider)
	if !ok {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	cx, cy, rt, rim, rn := provider.Geometry()
	px := (float64(cx) + 0.5) * float64(scale)
	py := (float64(cy) + 0.5) * float64(scale)
	for i, r := range [3]float64{rt, rim, rn} {
		if o.show[i] && r > 0 {
			o.drawCircle(screen, px, py, r*float64(scale), ringColors[i])
		}
	}
}

func (o *Overlay) drawCircle(screen *ebiten.Image, cx, cy, r float64, col color.RGBA) {
	segments := int(math.Max(16, r/2))
	step := 2 * math.Pi / float64(segments)
	x0, y0 := cx+r, cy
	for i := 1; i <= segments; i++ {
		a := float64(i) * step
		x1, y1 := cx+r*math.Cos(a), cy+r*math.Sin(a)
		o.drawLine(screen, x0, y0, x1, y1, 1, col)
		x0, y0 = x1, y1
	}
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
