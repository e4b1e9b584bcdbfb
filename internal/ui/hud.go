//go:build ebiten

package ui

import (
	"image/color"
	"strings"

	"tumor-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders live readings and the run's constants in a panel to the right
// of the simulation view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	title      string

	paused   bool
	stats    []core.Stat
	snapshot core.ParameterSnapshot
	scroll   int
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, title: strings.ToUpper(sim.Name())}
	if provider, ok := sim.(core.ParameterProvider); ok {
		h.snapshot = provider.Parameters()
	}
	return h
}

// Update refreshes the cached readings and applies mouse-wheel scrolling to
// the parameter list.
func (h *HUD) Update(paused bool) {
	if h == nil {
		return
	}
	h.paused = paused
	if provider, ok := h.sim.(core.StatsProvider); ok {
		h.stats = provider.Stats()
	}
	_, dy := ebiten.Wheel()
	h.scroll -= int(dy * lineHeight)
	if h.scroll < 0 {
		h.scroll = 0
	}
}

// Draw paints the HUD panel anchored at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawText()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawText() {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	title := h.title
	if h.paused {
		title += "  (paused)"
	}
	text.Draw(h.panel, title, face, panelPadding, y, headerColor)
	y += lineHeight

	for _, s := range h.stats {
		h.drawRow(s.Label, s.Value, y, valueColor)
		y += lineHeight
	}
	y += lineHeight / 2

	y -= h.scroll
	for _, g := range h.snapshot.Groups {
		if y > 0 {
			text.Draw(h.panel, g.Name, face, panelPadding, y, headerColor)
		}
		y += lineHeight
		for _, p := range g.Params {
			if y > 0 {
				h.drawRow(p.Label, p.Value, y, dimColor)
			}
			y += lineHeight
		}
		if y > h.lastHeight {
			return
		}
	}
}

func (h *HUD) drawRow(label, value string, y int, c color.Color) {
	face := basicfont.Face7x13
	text.Draw(h.panel, label, face, panelPadding, y, c)
	w := text.BoundString(face, value).Dx()
	text.Draw(h.panel, value, face, h.width-panelPadding-w, y, c)
}

var (
	headerColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	valueColor  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 16
	headerBaseline = 6
)
