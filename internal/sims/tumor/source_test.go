package tumor

// scriptedSource replays fixed values so tests can force every stochastic
// branch.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if n <= 0 || len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

// newTestContext builds the transition context the automaton would hand to
// the occupant of c.
func newTestContext(g *Grid, c *Cell, vars *Variables, src Source) *Context {
	env := NewEnv(vars)
	return &Context{
		Grid: g,
		Cell: c,
		Free: c.FreeNeighbors(nil),
		Vars: vars,
		Env:  &env,
		Rand: src,
	}
}

func fillNeighbors(t interface{ Fatalf(string, ...any) }, g *Grid, c *Cell, kind Kind) {
	for _, n := range c.Neighbors() {
		if !n.Empty() {
			continue
		}
		if err := g.PlaceEntity(NewEntity(kind, 0), n.X, n.Y); err != nil {
			t.Fatalf("fill neighbor (%d,%d): %v", n.X, n.Y, err)
		}
	}
}

func countKind(g *Grid, kind Kind) int {
	n := 0
	for _, c := range g.ActiveCells() {
		if c.Entity().Kind == kind {
			n++
		}
	}
	return n
}
