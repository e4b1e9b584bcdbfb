package tumor

import "math"

// Counter tallies the entities that were active at the start of a step.
type Counter struct {
	Biological    int
	Immune        int
	Tumor         int
	Proliferating int
	Stem          int
	Quiescent     int
	Necrotic      int
}

func (c *Counter) add(k Kind) {
	switch k {
	case KindBiological:
		c.Biological++
	case KindImmune:
		c.Immune++
	case KindNecrotic:
		c.Necrotic++
	case KindQuiescent:
		c.Quiescent++
	}
	if k.Cancerous() {
		c.Tumor++
	}
	if k.Proliferating() {
		c.Proliferating++
	}
	if k.Stem() {
		c.Stem++
	}
}

// Automaton advances a grid by synchronous steps.
type Automaton struct {
	grid *Grid
	vars *Variables
	src  Source

	// edge holds the tumor cells that had a free neighbor at the end of the
	// previous step; Rt is derived from it, one step late.
	edge    []*Cell
	counter Counter
	env     Env
	steps   int

	cells    []*Cell
	entities []*Entity
	draws    []Draws

	// CheckInvariants verifies the active index after every step and panics
	// on divergence.
	CheckInvariants bool
}

// NewAutomaton returns an automaton driving grid with the given variables
// and random source.
func NewAutomaton(grid *Grid, vars *Variables, src Source) *Automaton {
	return &Automaton{grid: grid, vars: vars, src: src}
}

// Grid returns the lattice being advanced.
func (a *Automaton) Grid() *Grid { return a.grid }

// Variables returns the clock and parameter bundle.
func (a *Automaton) Variables() *Variables { return a.vars }

// Counter returns the tally of the last step.
func (a *Automaton) Counter() Counter { return a.counter }

// Env returns the environment used by the last step.
func (a *Automaton) Env() Env { return a.env }

// Steps is the number of completed steps.
func (a *Automaton) Steps() int { return a.steps }

// EdgeCells returns the edge cells found at the end of the last step.
func (a *Automaton) EdgeCells() []*Cell { return a.edge }

// Next performs one step. Only entities present when the step starts
// transition, each exactly once; anything spawned or moved during the step
// waits for the next one.
func (a *Automaton) Next() {
	a.snapshot()
	a.counter = Counter{}

	if len(a.edge) > 0 {
		sum := 0.0
		for _, c := range a.edge {
			sum += c.Distance()
		}
		a.vars.Rt = sum / float64(len(a.edge))
	}
	a.env = NewEnv(a.vars)

	var buf [8]*Cell
	ctx := Context{Grid: a.grid, Vars: a.vars, Env: &a.env, Rand: a.src}
	for i, c := range a.cells {
		e := a.entities[i]
		// Vacated, or refilled by something that is not this step's occupant.
		if c.Entity() != e {
			continue
		}
		ctx.Cell = c
		ctx.Free = c.FreeNeighbors(buf[:0])
		ctx.dead = false
		e.Energy = a.energyAt(c, len(ctx.Free) > 0)
		a.counter.add(e.Kind)

		e.Transition(&ctx, a.draws[i])
	}
	ctx = Context{}

	a.edge = a.edgeCells()
	a.vars.AdvanceInjections()
	a.recruit()
	a.steps++

	if a.CheckInvariants {
		a.grid.MustCheck()
	}
}

// snapshot copies the active cells and their occupants and draws one row of
// randoms per entry.
func (a *Automaton) snapshot() {
	n := a.grid.ActiveCount()
	a.cells = append(a.cells[:0], a.grid.active...)
	a.entities = a.entities[:0]
	for _, c := range a.cells {
		a.entities = append(a.entities, c.Entity())
	}
	if cap(a.draws) < n {
		a.draws = make([]Draws, n)
	}
	a.draws = a.draws[:n]
	for i := range a.draws {
		for j := range a.draws[i] {
			a.draws[i][j] = a.src.Float64()
		}
	}
}

// energyAt is the nutrient level at c: full on the boundary, otherwise one
// less than the best-fed neighbor.
func (a *Automaton) energyAt(c *Cell, boundary bool) int {
	if boundary {
		return a.vars.MaxEnergyLevel
	}
	best := math.MinInt
	for _, n := range c.Neighbors() {
		if e := n.Entity(); e != nil && e.Energy > best {
			best = e.Energy
		}
	}
	if best == math.MinInt {
		return a.vars.MaxEnergyLevel
	}
	if best-1 < 0 {
		return 0
	}
	return best - 1
}

func (a *Automaton) edgeCells() []*Cell {
	edge := a.edge[:0]
	for _, c := range a.grid.active {
		if !c.Entity().Kind.Cancerous() {
			continue
		}
		for _, n := range c.Neighbors() {
			if n.Empty() {
				edge = append(edge, c)
				break
			}
		}
	}
	return edge
}

// Recruitment returns how many immune cells a step with the given tally
// attracts.
func (a *Automaton) Recruitment(c Counter) int {
	if c.Immune >= a.vars.ImmuneCap {
		return 0
	}
	immune, tumor := float64(c.Immune), float64(c.Tumor)
	return int(math.Floor(a.vars.RecruitRate * immune * tumor / (a.vars.RecruitSaturation + tumor)))
}

func (a *Automaton) recruit() {
	for n := a.Recruitment(a.counter); n > 0; n-- {
		c := a.grid.RandomFreeCell(a.src)
		if c == nil {
			return
		}
		a.grid.SetEntity(c, NewEntity(KindImmune, 0))
	}
}
