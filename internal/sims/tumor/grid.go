package tumor

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"tumor-ca/internal/core"
)

var (
	// ErrOutOfBounds is returned when a placement falls outside the lattice.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrOccupied is returned when placing onto a cell that already holds an entity.
	ErrOccupied = errors.New("cell already occupied")
	// ErrNilEntity is returned when placing a nil entity.
	ErrNilEntity = errors.New("nil entity")
	// ErrUnknownKind is returned for unrecognised entity kind names.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// Cell is a single lattice slot holding at most one entity.
type Cell struct {
	X, Y int

	entity    *Entity
	neighbors [8]*Cell
	distance  float64
	// slot is the cell's position in Grid.active, -1 while empty.
	slot int
}

// Entity returns the occupying entity or nil.
func (c *Cell) Entity() *Entity { return c.entity }

// Empty reports whether no entity occupies the cell.
func (c *Cell) Empty() bool { return c.entity == nil }

// Neighbors returns the 8 Moore neighbors. The slice aliases the cell's cache
// and must not be modified.
func (c *Cell) Neighbors() []*Cell { return c.neighbors[:] }

// FreeNeighbors appends the empty neighbors to dst.
func (c *Cell) FreeNeighbors(dst []*Cell) []*Cell {
	for _, n := range c.neighbors {
		if n.entity == nil {
			dst = append(dst, n)
		}
	}
	return dst
}

// Distance is the Euclidean distance from the grid centre.
func (c *Cell) Distance() float64 { return c.distance }

// Color is the display color of the occupant, black when empty.
func (c *Cell) Color(maxPotential int) color.RGBA {
	if c.entity == nil {
		return color.RGBA{A: 255}
	}
	return c.entity.Color(maxPotential)
}

// Grid is a fixed-size toroidal lattice with an index of occupied cells.
type Grid struct {
	w, h   int
	cells  []Cell
	active []*Cell
	cx, cy int
}

// NewGrid allocates a w×h lattice and caches every cell's neighborhood.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	g := &Grid{w: w, h: h, cells: make([]Cell, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := &g.cells[y*w+x]
			c.X, c.Y = x, y
			c.slot = -1
		}
	}
	for i := range g.cells {
		c := &g.cells[i]
		n := 0
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx := core.Wrap(c.X+dx, w)
				ny := core.Wrap(c.Y+dy, h)
				c.neighbors[n] = &g.cells[ny*w+nx]
				n++
			}
		}
	}
	g.SetCenter(w/2, h/2)
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Size returns the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.w, H: g.h} }

// Center returns the point distances are measured from.
func (g *Grid) Center() (int, int) { return g.cx, g.cy }

// SetCenter moves the reference point and refreshes every cached distance.
func (g *Grid) SetCenter(x, y int) {
	g.cx, g.cy = x, y
	for i := range g.cells {
		c := &g.cells[i]
		dx := float64(c.X - x)
		dy := float64(c.Y - y)
		c.distance = math.Sqrt(dx*dx + dy*dy)
	}
}

// Cell returns the cell at (x, y) with toroidal wrapping.
func (g *Grid) Cell(x, y int) *Cell {
	return &g.cells[core.Wrap(y, g.h)*g.w+core.Wrap(x, g.w)]
}

// PlaceEntity seeds e at (x, y). Coordinates in (-w, w) × (-h, h) are
// accepted; negative ones count from the far edge.
func (g *Grid) PlaceEntity(e *Entity, x, y int) error {
	if e == nil {
		return fmt.Errorf("place at (%d,%d): %w", x, y, ErrNilEntity)
	}
	if x <= -g.w || x >= g.w || y <= -g.h || y >= g.h {
		return fmt.Errorf("place at (%d,%d) on %dx%d grid: %w", x, y, g.w, g.h, ErrOutOfBounds)
	}
	c := g.Cell(x, y)
	if !c.Empty() {
		return fmt.Errorf("place at (%d,%d): %w by %s", x, y, ErrOccupied, c.entity.Kind)
	}
	g.SetEntity(c, e)
	return nil
}

// SetEntity assigns e (nil to vacate) to c and keeps the active index in
// step. Every occupancy change in the simulation goes through here.
func (g *Grid) SetEntity(c *Cell, e *Entity) {
	switch {
	case c.entity == nil && e != nil:
		c.slot = len(g.active)
		g.active = append(g.active, c)
	case c.entity != nil && e == nil:
		last := len(g.active) - 1
		if c.slot < 0 || c.slot > last || g.active[c.slot] != c {
			panic(fmt.Sprintf("tumor: active index lost cell (%d,%d)", c.X, c.Y))
		}
		moved := g.active[last]
		g.active[c.slot] = moved
		moved.slot = c.slot
		g.active[last] = nil
		g.active = g.active[:last]
		c.slot = -1
	}
	c.entity = e
}

// ActiveCells returns a copy of the occupied cells in unspecified order.
func (g *Grid) ActiveCells() []*Cell {
	out := make([]*Cell, len(g.active))
	copy(out, g.active)
	return out
}

// ActiveCount is the number of occupied cells.
func (g *Grid) ActiveCount() int { return len(g.active) }

// FreeCount is the number of empty cells.
func (g *Grid) FreeCount() int { return len(g.cells) - len(g.active) }

// RandomFreeCell picks an empty cell uniformly at random, or nil if the grid
// is full.
func (g *Grid) RandomFreeCell(src Source) *Cell {
	free := g.FreeCount()
	if free == 0 {
		return nil
	}
	// Rejection sampling is cheap while the grid is mostly empty.
	if free*2 >= len(g.cells) {
		for attempt := 0; attempt < 32; attempt++ {
			c := &g.cells[src.IntN(len(g.cells))]
			if c.Empty() {
				return c
			}
		}
	}
	k := src.IntN(free)
	for i := range g.cells {
		if !g.cells[i].Empty() {
			continue
		}
		if k == 0 {
			return &g.cells[i]
		}
		k--
	}
	return nil
}

// Pixels lists every occupied cell with its display color.
func (g *Grid) Pixels(maxPotential int) []core.Pixel {
	out := make([]core.Pixel, 0, len(g.active))
	for _, c := range g.active {
		out = append(out, core.Pixel{X: c.X, Y: c.Y, C: c.entity.Color(maxPotential)})
	}
	return out
}

// CheckInvariants verifies that the active index holds exactly the occupied
// cells, once each.
func (g *Grid) CheckInvariants() error {
	occupied := 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.Empty() {
			if c.slot != -1 {
				return fmt.Errorf("empty cell (%d,%d) indexed at %d", c.X, c.Y, c.slot)
			}
			continue
		}
		occupied++
		if c.slot < 0 || c.slot >= len(g.active) || g.active[c.slot] != c {
			return fmt.Errorf("occupied cell (%d,%d) missing from index", c.X, c.Y)
		}
	}
	if occupied != len(g.active) {
		return fmt.Errorf("index holds %d cells, %d occupied", len(g.active), occupied)
	}
	return nil
}

// MustCheck panics when CheckInvariants fails. A diverged index corrupts
// every statistic derived from it, so there is nothing to recover.
func (g *Grid) MustCheck() {
	if err := g.CheckInvariants(); err != nil {
		panic("tumor: " + err.Error())
	}
}
