package stream

import "tumor-ca/internal/core"

// Frame is one simulation snapshot as sent to viewers. Cells holds
// [x, y, r, g, b] for every occupied cell.
type Frame struct {
	Name   string            `json:"name"`
	Step   int               `json:"step"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Stats  map[string]string `json:"stats"`
	Cells  [][5]int          `json:"cells"`
}

// NewFrame packs a sim's current state.
func NewFrame(name string, step int, size core.Size, stats []core.Stat, pixels []core.Pixel) Frame {
	f := Frame{
		Name:   name,
		Step:   step,
		Width:  size.W,
		Height: size.H,
		Stats:  make(map[string]string, len(stats)),
		Cells:  make([][5]int, len(pixels)),
	}
	for _, s := range stats {
		f.Stats[s.Label] = s.Value
	}
	for i, p := range pixels {
		f.Cells[i] = [5]int{p.X, p.Y, int(p.C.R), int(p.C.G), int(p.C.B)}
	}
	return f
}
