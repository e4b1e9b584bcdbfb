package tumor

import (
	"errors"
	"testing"
)

func TestNeighborsWrapAtEdgesAndCorners(t *testing.T) {
	g := NewGrid(10, 7)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := g.Cell(x, y)
			neighbors := c.Neighbors()
			if len(neighbors) != 8 {
				t.Fatalf("cell (%d,%d) has %d neighbors", x, y, len(neighbors))
			}
			seen := map[*Cell]bool{}
			for _, n := range neighbors {
				if n == c {
					t.Fatalf("cell (%d,%d) lists itself as neighbor", x, y)
				}
				if seen[n] {
					t.Fatalf("cell (%d,%d) lists (%d,%d) twice", x, y, n.X, n.Y)
				}
				seen[n] = true
				dx := (n.X - x + g.Width()) % g.Width()
				dy := (n.Y - y + g.Height()) % g.Height()
				if (dx != 0 && dx != 1 && dx != g.Width()-1) || (dy != 0 && dy != 1 && dy != g.Height()-1) {
					t.Fatalf("(%d,%d) is not a toroidal neighbor of (%d,%d)", n.X, n.Y, x, y)
				}
			}
			again := c.Neighbors()
			for i := range again {
				if again[i] != neighbors[i] {
					t.Fatalf("neighbors of (%d,%d) changed between calls", x, y)
				}
			}
		}
	}

	corner := g.Cell(0, 0)
	want := map[[2]int]bool{
		{9, 6}: true, {9, 0}: true, {9, 1}: true,
		{0, 6}: true, {0, 1}: true,
		{1, 6}: true, {1, 0}: true, {1, 1}: true,
	}
	for _, n := range corner.Neighbors() {
		if !want[[2]int{n.X, n.Y}] {
			t.Fatalf("unexpected corner neighbor (%d,%d)", n.X, n.Y)
		}
	}
}

func TestPlaceEntityGrowsIndex(t *testing.T) {
	g := NewGrid(10, 10)
	positions := [][2]int{{0, 0}, {5, 5}, {9, 9}, {3, 7}, {-1, -2}}
	for i, p := range positions {
		before := g.ActiveCount()
		if err := g.PlaceEntity(NewEntity(KindCancer, 3), p[0], p[1]); err != nil {
			t.Fatalf("placement %d at %v: %v", i, p, err)
		}
		if got := g.ActiveCount(); got != before+1 {
			t.Fatalf("placement %d: index size %d, want %d", i, got, before+1)
		}
	}
	if g.Cell(9, 8).Empty() {
		t.Fatal("negative coordinates should count from the far edge")
	}
	if err := g.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestPlaceEntityOutOfBounds(t *testing.T) {
	g := NewGrid(10, 10)
	for _, p := range [][2]int{{10, 0}, {0, 10}, {-10, 0}, {0, -10}, {25, 25}} {
		err := g.PlaceEntity(NewEntity(KindBiological, 1), p[0], p[1])
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("placement at %v: got %v, want ErrOutOfBounds", p, err)
		}
	}
	if g.ActiveCount() != 0 {
		t.Fatalf("failed placements must not touch the index, got %d", g.ActiveCount())
	}
	if err := g.PlaceEntity(nil, 1, 1); !errors.Is(err, ErrNilEntity) {
		t.Fatalf("nil placement: got %v", err)
	}
}

func TestPlaceEntityOnOccupiedCellFails(t *testing.T) {
	g := NewGrid(10, 10)
	first := NewEntity(KindCancer, 4)
	if err := g.PlaceEntity(first, 2, 2); err != nil {
		t.Fatal(err)
	}
	err := g.PlaceEntity(NewEntity(KindImmune, 0), 2, 2)
	if !errors.Is(err, ErrOccupied) {
		t.Fatalf("got %v, want ErrOccupied", err)
	}
	if g.ActiveCount() != 1 {
		t.Fatalf("index size %d after rejected placement", g.ActiveCount())
	}
	if g.Cell(2, 2).Entity() != first {
		t.Fatal("rejected placement replaced the occupant")
	}
}

func TestRemovalShrinksIndex(t *testing.T) {
	g := NewGrid(8, 8)
	for i := 0; i < 5; i++ {
		if err := g.PlaceEntity(NewEntity(KindCancer, 1), i, i); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range [][2]int{{2, 2}, {0, 0}, {4, 4}} {
		before := g.ActiveCount()
		c := g.Cell(p[0], p[1])
		g.SetEntity(c, nil)
		if g.ActiveCount() != before-1 {
			t.Fatalf("removal at %v: index %d, want %d", p, g.ActiveCount(), before-1)
		}
		if !c.Empty() || c.Entity() != nil {
			t.Fatalf("cell %v still occupied after removal", p)
		}
		if err := g.CheckInvariants(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReplacingOccupantKeepsIndex(t *testing.T) {
	g := NewGrid(5, 5)
	if err := g.PlaceEntity(NewEntity(KindCancer, 1), 1, 1); err != nil {
		t.Fatal(err)
	}
	g.SetEntity(g.Cell(1, 1), NewEntity(KindNecrotic, 0))
	if g.ActiveCount() != 1 {
		t.Fatalf("index size %d after replacement", g.ActiveCount())
	}
	if err := g.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestActiveCellsIsACopy(t *testing.T) {
	g := NewGrid(5, 5)
	if err := g.PlaceEntity(NewEntity(KindCancer, 1), 1, 1); err != nil {
		t.Fatal(err)
	}
	cells := g.ActiveCells()
	cells[0] = nil
	if g.ActiveCells()[0] == nil {
		t.Fatal("mutating the returned slice changed the index")
	}
}

func TestRandomFreeCell(t *testing.T) {
	g := NewGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x == 3 && y == 1 {
				continue
			}
			if err := g.PlaceEntity(NewEntity(KindNecrotic, 0), x, y); err != nil {
				t.Fatal(err)
			}
		}
	}
	src := &scriptedSource{ints: []int{0, 5, 11}}
	c := g.RandomFreeCell(src)
	if c == nil || c.X != 3 || c.Y != 1 {
		t.Fatalf("expected the only free cell (3,1), got %+v", c)
	}
	g.SetEntity(c, NewEntity(KindImmune, 0))
	if got := g.RandomFreeCell(src); got != nil {
		t.Fatalf("full grid returned (%d,%d)", got.X, got.Y)
	}
}

func TestCheckInvariantsDetectsDivergence(t *testing.T) {
	g := NewGrid(5, 5)
	// Bypass SetEntity on purpose.
	g.Cell(2, 3).entity = NewEntity(KindCancer, 1)
	if err := g.CheckInvariants(); err == nil {
		t.Fatal("expected divergence to be reported")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("MustCheck should panic on divergence")
		}
	}()
	g.MustCheck()
}

func TestDistanceFollowsCenter(t *testing.T) {
	g := NewGrid(20, 20)
	if d := g.Cell(13, 14).Distance(); d != 5 {
		t.Fatalf("distance from default centre = %v, want 5", d)
	}
	g.SetCenter(0, 0)
	if d := g.Cell(3, 4).Distance(); d != 5 {
		t.Fatalf("distance after SetCenter = %v, want 5", d)
	}
}

func TestPixelsCoverOccupiedCells(t *testing.T) {
	g := NewGrid(6, 6)
	if err := g.PlaceEntity(NewEntity(KindCancer, 10), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := g.PlaceEntity(NewEntity(KindImmune, 0), 4, 4); err != nil {
		t.Fatal(err)
	}
	pixels := g.Pixels(10)
	if len(pixels) != 2 {
		t.Fatalf("got %d pixels, want 2", len(pixels))
	}
	for _, p := range pixels {
		if want := g.Cell(p.X, p.Y).Color(10); p.C != want {
			t.Fatalf("pixel (%d,%d) color %v, want %v", p.X, p.Y, p.C, want)
		}
	}
}
