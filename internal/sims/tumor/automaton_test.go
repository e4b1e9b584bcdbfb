package tumor

import (
	"math"
	"testing"

	"tumor-ca/internal/core"
)

func newTestAutomaton(t *testing.T, w, h int, src Source) (*Grid, *Variables, *Automaton) {
	t.Helper()
	g := NewGrid(w, h)
	vars := NewVariables(DefaultParams())
	a := NewAutomaton(g, vars, src)
	a.CheckInvariants = true
	return g, vars, a
}

func place(t *testing.T, g *Grid, kind Kind, potential, x, y int) *Entity {
	t.Helper()
	e := NewEntity(kind, potential)
	if err := g.PlaceEntity(e, x, y); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSingleCellDividesOnce(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.5, 0, 0.99, 0.99, 0.99}}
	g, _, a := newTestAutomaton(t, 10, 10, src)
	parent := place(t, g, KindBiological, 1, 5, 5)

	a.Next()
	if g.ActiveCount() != 2 {
		t.Fatalf("expected 2 cells after one step, got %d", g.ActiveCount())
	}
	for _, c := range g.ActiveCells() {
		e := c.Entity()
		if e.Potential != 0 {
			t.Fatalf("cell (%d,%d) potential %d, want 0", c.X, c.Y, e.Potential)
		}
		if e != parent && e.Age != 0 {
			t.Fatal("daughter transitioned in the step it was born")
		}
	}
	if parent.Age != 1 {
		t.Fatalf("parent age %d, want 1", parent.Age)
	}
	if a.Counter().Biological != 1 {
		t.Fatalf("counter %+v, want one biological cell", a.Counter())
	}

	// Exhausted cells that are asked to divide die instead.
	a.Next()
	if g.ActiveCount() != 0 {
		t.Fatalf("expected exhausted cells to die, %d left", g.ActiveCount())
	}
}

func TestMigrantTransitionsOncePerStep(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.5, 0.999, 0}}
	g, _, a := newTestAutomaton(t, 10, 10, src)
	e := place(t, g, KindBiological, 3, 5, 5)

	a.Next()
	if e.Age != 1 {
		t.Fatalf("migrating entity transitioned %d times", e.Age)
	}
	if g.Cell(5, 5).Entity() == e {
		t.Fatal("entity did not migrate")
	}
}

func TestCounterTalliesStartOfStep(t *testing.T) {
	g, _, a := newTestAutomaton(t, 20, 20, &scriptedSource{})
	place(t, g, KindBiological, 3, 1, 1)
	place(t, g, KindCancer, 3, 5, 5)
	place(t, g, KindTrueStem, 3, 10, 10)
	place(t, g, KindQuiescent, 3, 15, 15)
	place(t, g, KindNecrotic, 0, 15, 5)
	place(t, g, KindImmune, 0, 5, 15)

	a.Next()
	want := Counter{Biological: 1, Immune: 1, Tumor: 3, Proliferating: 2, Stem: 1, Quiescent: 1, Necrotic: 1}
	if got := a.Counter(); got != want {
		t.Fatalf("counter %+v, want %+v", got, want)
	}
}

func TestEnergyFollowsBoundary(t *testing.T) {
	g, vars, a := newTestAutomaton(t, 20, 20, &scriptedSource{})
	for x := 5; x < 10; x++ {
		for y := 5; y < 10; y++ {
			place(t, g, KindNecrotic, 0, x, y)
		}
	}
	a.Next()
	if e := g.Cell(5, 5).Entity(); e.Energy != vars.MaxEnergyLevel {
		t.Fatalf("boundary energy %d, want %d", e.Energy, vars.MaxEnergyLevel)
	}
	if e := g.Cell(7, 7).Entity(); e.Energy >= vars.MaxEnergyLevel || e.Energy < 0 {
		t.Fatalf("interior energy %d, want below %d", e.Energy, vars.MaxEnergyLevel)
	}
}

func TestRecruitmentFormula(t *testing.T) {
	_, _, a := newTestAutomaton(t, 4, 4, &scriptedSource{})
	cases := []struct {
		c    Counter
		want int
	}{
		{Counter{Immune: 10, Tumor: 100}, 1},
		{Counter{Immune: 0, Tumor: 100}, 0},
		{Counter{Immune: 10, Tumor: 0}, 0},
		{Counter{Immune: 500, Tumor: 1000}, 500},
		{Counter{Immune: 1000, Tumor: 1000}, 0},
		{Counter{Immune: 2000, Tumor: 1000}, 0},
	}
	for _, tc := range cases {
		if got := a.Recruitment(tc.c); got != tc.want {
			t.Fatalf("Recruitment(%+v) = %d, want %d", tc.c, got, tc.want)
		}
	}
}

func TestRecruitmentSpawnsImmuneCells(t *testing.T) {
	g, _, a := newTestAutomaton(t, 40, 40, &scriptedSource{})
	for x := 15; x < 25; x++ {
		for y := 15; y < 25; y++ {
			place(t, g, KindCancer, 5, x, y)
		}
	}
	for x := 2; x < 12; x++ {
		place(t, g, KindImmune, 0, x, 32)
	}

	a.Next()
	if got := countKind(g, KindImmune); got != 11 {
		t.Fatalf("immune cells %d, want 11", got)
	}
	if g.Cell(0, 0).Entity() == nil || g.Cell(0, 0).Entity().Kind != KindImmune {
		t.Fatal("recruit not placed on the drawn free cell")
	}
}

func TestRecruitmentStopsAtCap(t *testing.T) {
	g, _, a := newTestAutomaton(t, 50, 50, &scriptedSource{})
	place(t, g, KindCancer, 5, 25, 45)
	for i := 0; i < 1000; i++ {
		place(t, g, KindImmune, 0, i%50, i/50)
	}

	a.Next()
	if got := countKind(g, KindImmune); got != 1000 {
		t.Fatalf("immune cells %d, want 1000", got)
	}
}

func TestRtLagsOneStep(t *testing.T) {
	g, vars, a := newTestAutomaton(t, 10, 10, &scriptedSource{})
	place(t, g, KindCancer, 5, 7, 5)
	place(t, g, KindCancer, 5, 5, 8)

	a.Next()
	if vars.Rt != 0 {
		t.Fatalf("Rt after first step %v, want 0", vars.Rt)
	}
	if len(a.EdgeCells()) != 2 {
		t.Fatalf("edge cells %d, want 2", len(a.EdgeCells()))
	}
	a.Next()
	if math.Abs(vars.Rt-2.5) > 1e-12 || math.Abs(a.Env().Rt-2.5) > 1e-12 {
		t.Fatalf("Rt %v (env %v), want 2.5", vars.Rt, a.Env().Rt)
	}
}

func TestEdgeExcludesNecroticAndImmune(t *testing.T) {
	g, _, a := newTestAutomaton(t, 10, 10, &scriptedSource{})
	place(t, g, KindNecrotic, 0, 2, 2)
	a.Next()
	if len(a.EdgeCells()) != 0 {
		t.Fatal("necrotic tissue counted as tumor edge")
	}
}

func TestInjectionsCountedByAutomaton(t *testing.T) {
	g, vars, a := newTestAutomaton(t, 10, 10, &scriptedSource{})
	place(t, g, KindNecrotic, 0, 2, 2)
	vars.Time = 10 * 24

	a.Next()
	a.Next()
	if vars.InjectionNumber != 1 {
		t.Fatalf("injections %d, want 1", vars.InjectionNumber)
	}
	if a.Steps() != 2 {
		t.Fatalf("steps %d, want 2", a.Steps())
	}
}

func TestLongRunKeepsIndexConsistent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 60, 60
	cfg.Params.TimeDelta = 24
	sim, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sim.Automaton().CheckInvariants = true
	for i := 0; i < 300; i++ {
		sim.Step()
	}
	if err := sim.Grid().CheckInvariants(); err != nil {
		t.Fatal(err)
	}
	if sim.Variables().InjectionNumber == 0 {
		t.Fatal("no injections after 300 days")
	}
}

func TestResetIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 40, 40
	a, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	run := func(s *Sim) (Sample, []core.Pixel) {
		for i := 0; i < 60; i++ {
			s.Step()
		}
		return s.Sample(), s.Pixels()
	}
	sa, pa := run(a)
	sb, pb := run(b)
	if sa != sb {
		t.Fatalf("samples diverged: %+v vs %+v", sa, sb)
	}
	if len(pa) != len(pb) {
		t.Fatalf("pixel counts diverged: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("pixel %d diverged: %+v vs %+v", i, pa[i], pb[i])
		}
	}

	a.Reset(0)
	if a.Sample().Step != 0 || a.Variables().Time != 0 {
		t.Fatal("reset did not rewind the clock")
	}
	if sa2, _ := run(a); sa2 != sa {
		t.Fatalf("rerun after reset diverged: %+v vs %+v", sa2, sa)
	}
}
