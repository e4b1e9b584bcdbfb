package tumor

import "sort"

// Source supplies the randomness the automaton and the rules consume.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Draws is one row of independent uniform draws in [0, 1), generated once per
// active cell per step.
type Draws [5]float64

// Slots of a draw row for biological cells.
const (
	drawApoptosis = iota
	drawProliferation
	drawMigration
	drawTheta
	drawDeath
)

// Slots of a draw row for immune cells.
const (
	drawBias = iota
	drawKill
	drawImmuneDeath
)

// Env holds the per-step quantities every rule reads. The automaton computes
// it once per step so Wp, Rn and the drug kill probabilities are not
// recomputed per entity.
type Env struct {
	Rt, Wp, Rn float64

	Treatment bool
	Exposure  float64

	KillProliferating float64
	KillQuiescent     float64
	KillImmune        float64
}

// NewEnv derives the step environment from the current variables.
func NewEnv(v *Variables) Env {
	env := Env{Rt: v.Rt, Wp: v.Wp(), Rn: v.Rn(), Treatment: v.IsTreatment()}
	if env.Treatment {
		env.Exposure = v.ExposureProbability()
		env.KillProliferating = v.DrugDeathProbability(v.YPC, v.KPC)
		env.KillQuiescent = v.DrugDeathProbability(v.YQ, v.KQ)
		env.KillImmune = v.DrugDeathProbability(v.YI, v.KI)
	}
	return env
}

// Context is the spatial and global state handed to one transition.
type Context struct {
	Grid *Grid
	Cell *Cell
	// Free holds the cell's empty neighbors as of the start of the transition.
	Free []*Cell
	Vars *Variables
	Env  *Env
	Rand Source

	dead bool
}

func (ctx *Context) die() {
	ctx.Grid.SetEntity(ctx.Cell, nil)
	ctx.dead = true
}

// free drops candidates filled earlier in this transition.
func (ctx *Context) free() []*Cell {
	out := ctx.Free[:0]
	for _, c := range ctx.Free {
		if c.Empty() {
			out = append(out, c)
		}
	}
	ctx.Free = out
	return out
}

func (ctx *Context) moveTo(e *Entity, target *Cell) {
	ctx.Grid.SetEntity(ctx.Cell, nil)
	ctx.Grid.SetEntity(target, e)
	ctx.Cell = target
}

// Transition advances e by one step. The outcome depends only on ctx, the
// draws and the extra choices taken from ctx.Rand.
func (e *Entity) Transition(ctx *Context, d Draws) {
	e.Age++
	switch e.Kind {
	case KindNecrotic:
	case KindImmune:
		e.immune(ctx, d)
	case KindQuiescent:
		e.quiescent(ctx, d)
	default:
		e.proliferative(ctx, d)
	}
}

func (e *Entity) proliferative(ctx *Context, d Draws) {
	b := behaviors[e.Kind]
	if d[drawApoptosis] <= b.apoptosis {
		ctx.die()
		return
	}
	if e.poisoned(ctx, d, b.drug) {
		ctx.die()
		return
	}

	free := ctx.free()
	if e.Kind == KindCancer && len(free) == 0 && e.shouldRest(ctx) {
		e.Kind = KindQuiescent
		return
	}

	if len(free) > 0 && d[drawProliferation] <= e.proliferationProbability(ctx) {
		if e.Potential <= 0 {
			ctx.die()
			return
		}
		target := free[ctx.Rand.IntN(len(free))]
		ctx.Grid.SetEntity(target, e.replicate(ctx))
	}

	if d[drawMigration] <= b.migration {
		e.migrate(ctx)
	}
}

func (e *Entity) proliferationProbability(ctx *Context) float64 {
	b := behaviors[e.Kind]
	if !b.radial {
		return b.proliferation
	}
	p := ctx.Vars.P0 * (1 - ctx.Cell.Distance()/ctx.Vars.Rmax)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// replicate produces a daughter. Mortal kinds pay one unit of potential and
// pass the reduced potential on; stem kinds keep theirs.
func (e *Entity) replicate(ctx *Context) *Entity {
	var daughter *Entity
	switch e.Kind {
	case KindClonogenicStem:
		daughter = NewEntity(KindCancer, e.Potential)
	case KindTrueStem:
		kind := KindCancer
		if ctx.Rand.Float64() <= ctx.Vars.StemSelfRenewal {
			kind = KindTrueStem
		}
		daughter = NewEntity(kind, e.Potential)
	default:
		e.Potential--
		daughter = NewEntity(e.Kind, e.Potential)
	}
	daughter.Energy = e.Energy
	return daughter
}

func (e *Entity) migrate(ctx *Context) {
	if ctx.dead {
		return
	}
	free := ctx.free()
	if len(free) == 0 {
		return
	}
	ctx.moveTo(e, free[ctx.Rand.IntN(len(free))])
}

// shouldRest reports whether a boxed-in cancer cell lies deep enough inside
// the tumor, or is starved enough, to go dormant.
func (e *Entity) shouldRest(ctx *Context) bool {
	return ctx.Cell.Distance() < ctx.Env.Rt-ctx.Env.Wp || e.Energy <= ctx.Vars.QuiescentEnergyLevel
}

func (e *Entity) poisoned(ctx *Context, d Draws, s sensitivity) bool {
	if !ctx.Env.Treatment {
		return false
	}
	var kill float64
	switch s {
	case drugProliferating:
		kill = ctx.Env.KillProliferating
	case drugQuiescent:
		kill = ctx.Env.KillQuiescent
	default:
		return false
	}
	return d[drawTheta] <= ctx.Env.Exposure && d[drawDeath] <= kill
}

func (e *Entity) quiescent(ctx *Context, d Draws) {
	b := behaviors[KindQuiescent]
	if d[drawApoptosis] <= b.apoptosis {
		ctx.die()
		return
	}
	if e.poisoned(ctx, d, b.drug) {
		ctx.die()
		return
	}

	r := ctx.Cell.Distance()
	nearEdge := r >= ctx.Env.Rt-ctx.Env.Wp && e.Energy > ctx.Vars.QuiescentEnergyLevel
	if len(ctx.free()) > 0 || nearEdge {
		e.Kind = KindCancer
		return
	}
	if r < ctx.Env.Rn || e.Energy <= ctx.Vars.NecroticEnergyLevel {
		e.Kind = KindNecrotic
	}
}

func (e *Entity) immune(ctx *Context, d Draws) {
	// Only the first tumor neighbor in neighbor order is engaged.
	for _, n := range ctx.Cell.Neighbors() {
		target := n.Entity()
		if target == nil || !target.Kind.Cancerous() {
			continue
		}
		if d[drawKill] <= ctx.Vars.PdT {
			ctx.Grid.SetEntity(n, nil)
		}
		if d[drawImmuneDeath] <= ctx.Vars.PdI {
			ctx.die()
			return
		}
		break
	}

	if ctx.Vars.ChemoTargetsImmune && ctx.Env.Treatment &&
		d[drawTheta] <= ctx.Env.Exposure && d[drawDeath] <= ctx.Env.KillImmune {
		ctx.die()
		return
	}

	free := ctx.free()
	if len(free) == 0 {
		return
	}
	sort.SliceStable(free, func(i, j int) bool {
		return free[i].Distance() < free[j].Distance()
	})
	if d[drawBias] <= ctx.Vars.ImmuneBias && len(free) > 3 {
		free = free[:3]
	}
	ctx.moveTo(e, free[ctx.Rand.IntN(len(free))])
}
