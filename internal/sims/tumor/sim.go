package tumor

import (
	"fmt"
	"strconv"

	"tumor-ca/internal/core"
)

// Sample is the per-step summary recorded by reports and streamed to viewers.
type Sample struct {
	Step       int
	Time       int
	Day        int
	Rt         float64
	Treatment  bool
	Injections int
	Counter
}

// Sim wires a grid, its variables and an automaton into a core.Sim.
type Sim struct {
	cfg Config

	rng  *core.RNG
	grid *Grid
	vars *Variables
	auto *Automaton
	step int
}

// New returns a tumor simulation with the provided dimensions using defaults.
func New(w, h int) *Sim {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	sim, err := NewWithConfig(cfg)
	if err != nil {
		panic(err)
	}
	return sim
}

// NewWithConfig validates cfg and returns a simulation reset to cfg.Seed.
func NewWithConfig(cfg Config) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tumor config %q: %w", cfg.Name, err)
	}
	s := &Sim{cfg: cfg}
	s.Reset(0)
	return s, nil
}

// Name returns the simulation identifier.
func (s *Sim) Name() string { return "tumor" }

// Config returns the configuration the simulation was built from.
func (s *Sim) Config() Config { return s.cfg }

// Size reports the grid dimensions.
func (s *Sim) Size() core.Size { return s.grid.Size() }

// Grid exposes the lattice.
func (s *Sim) Grid() *Grid { return s.grid }

// Variables exposes the clock and constants.
func (s *Sim) Variables() *Variables { return s.vars }

// Automaton exposes the step engine.
func (s *Sim) Automaton() *Automaton { return s.auto }

// Reset rebuilds the world from the configured seeds. A zero seed falls back
// to the configured one.
func (s *Sim) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = s.cfg.Seed
	}
	s.rng = core.NewRNG(effective)
	s.grid = NewGrid(s.cfg.Width, s.cfg.Height)
	s.vars = NewVariables(s.cfg.Params)
	s.vars.Name = s.cfg.Name
	s.step = 0

	centred := false
	// Seeds were checked by Validate; anything unplaceable is skipped.
	for _, sd := range s.cfg.InitialSeeds() {
		kind, err := ParseKind(sd.Kind)
		if err != nil {
			continue
		}
		if err := s.grid.PlaceEntity(NewEntity(kind, sd.Potential), sd.X, sd.Y); err != nil {
			continue
		}
		if !centred && kind.Cancerous() {
			c := s.grid.Cell(sd.X, sd.Y)
			s.grid.SetCenter(c.X, c.Y)
			centred = true
		}
	}
	s.auto = NewAutomaton(s.grid, s.vars, s.rng)
}

// Step advances the automaton and then the clock.
func (s *Sim) Step() {
	s.auto.Next()
	s.vars.TimeStep()
	s.step++
}

// Geometry reports the tumor centre and the radii of the last step: the
// mean edge radius Rt, the inner edge of the proliferating rim and the
// necrotic radius Rn.
func (s *Sim) Geometry() (cx, cy int, rt, rim, rn float64) {
	cx, cy = s.grid.Center()
	rt = s.vars.Rt
	return cx, cy, rt, rt - s.vars.Wp(), s.vars.Rn()
}

// Pixels lists the occupied cells with their colors.
func (s *Sim) Pixels() []core.Pixel {
	return s.grid.Pixels(s.vars.MaxProliferationPotential)
}

// Sample summarises the state after the last step.
func (s *Sim) Sample() Sample {
	return Sample{
		Step:       s.step,
		Time:       s.vars.Time,
		Day:        s.vars.DaysElapsed(),
		Rt:         s.vars.Rt,
		Treatment:  s.vars.IsTreatment(),
		Injections: s.vars.InjectionNumber,
		Counter:    s.auto.Counter(),
	}
}

// Stats exposes the sample as display readings.
func (s *Sim) Stats() []core.Stat {
	sample := s.Sample()
	treatment := "off"
	if sample.Treatment {
		treatment = "on"
	}
	return []core.Stat{
		{Label: "Day", Value: strconv.Itoa(sample.Day)},
		{Label: "Step", Value: strconv.Itoa(sample.Step)},
		{Label: "Rt", Value: strconv.FormatFloat(sample.Rt, 'f', 1, 64)},
		{Label: "Tumor", Value: strconv.Itoa(sample.Tumor)},
		{Label: "Proliferating", Value: strconv.Itoa(sample.Proliferating)},
		{Label: "Stem", Value: strconv.Itoa(sample.Stem)},
		{Label: "Quiescent", Value: strconv.Itoa(sample.Quiescent)},
		{Label: "Necrotic", Value: strconv.Itoa(sample.Necrotic)},
		{Label: "Immune", Value: strconv.Itoa(sample.Immune)},
		{Label: "Chemo", Value: treatment},
		{Label: "Injections", Value: strconv.Itoa(sample.Injections)},
	}
}

func init() {
	core.Register("tumor", func(cfg map[string]string) core.Sim {
		sim, err := NewWithConfig(FromMap(cfg))
		if err != nil {
			return New(DefaultConfig().Width, DefaultConfig().Height)
		}
		return sim
	})
}
