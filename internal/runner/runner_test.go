package runner

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tumor-ca/internal/sims/tumor"
	"tumor-ca/internal/stream"
)

func smallScenario(name string, seed int64) tumor.Config {
	cfg := tumor.DefaultConfig()
	cfg.Name = name
	cfg.Width, cfg.Height = 40, 40
	cfg.Seed = seed
	return cfg
}

func TestRunWritesReports(t *testing.T) {
	dir := t.TempDir()
	scenarios := []tumor.Config{smallScenario("a", 1), smallScenario("b", 2), smallScenario("c", 3)}
	results := Run(context.Background(), scenarios, Options{
		Steps:      12,
		Workers:    2,
		OutDir:     dir,
		Video:      true,
		VideoScale: 2,
		Chart:      true,
	})
	if len(results) != 3 {
		t.Fatalf("results %d, want 3", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Name, res.Err)
		}
		if res.Name != scenarios[i].Name {
			t.Fatalf("result %d is %q, want %q", i, res.Name, scenarios[i].Name)
		}
		if res.Final.Step != 12 {
			t.Fatalf("%s stopped at step %d", res.Name, res.Final.Step)
		}

		f, err := os.Open(filepath.Join(dir, res.Name, "stats.csv"))
		if err != nil {
			t.Fatal(err)
		}
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 13 {
			t.Fatalf("%s: csv rows %d, want 13", res.Name, len(rows))
		}

		png, err := os.ReadFile(filepath.Join(dir, res.Name, "population.png"))
		if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Fatalf("%s: chart missing: %v", res.Name, err)
		}
		if _, err := os.Stat(filepath.Join(dir, res.Name, "sim.avi")); err != nil {
			t.Fatalf("%s: video missing: %v", res.Name, err)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	sc := []tumor.Config{smallScenario("x", 5), smallScenario("y", 5)}
	results := Run(context.Background(), sc, Options{Steps: 40, Workers: 2})
	if results[0].Final.Counter != results[1].Final.Counter || results[0].PeakTumor != results[1].PeakTumor {
		t.Fatalf("same seed diverged: %+v vs %+v", results[0].Final, results[1].Final)
	}
}

func TestRunScenarioStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := RunScenario(ctx, smallScenario("z", 1), Options{Steps: 10})
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", res.Err)
	}
}

func TestRunScenarioRejectsInvalidConfig(t *testing.T) {
	cfg := smallScenario("bad", 1)
	cfg.Params.P0 = 2
	if res := RunScenario(context.Background(), cfg, Options{Steps: 1}); res.Err == nil {
		t.Fatal("invalid config accepted")
	}
}

func TestLiveStateControls(t *testing.T) {
	s := liveState{tps: 10}
	s.apply(stream.Control{Type: "pause"})
	if !s.paused {
		t.Fatal("pause ignored")
	}
	s.apply(stream.Control{Type: "toggle"})
	if s.paused {
		t.Fatal("toggle ignored")
	}
	s.apply(stream.Control{Type: "tps", Value: 0})
	if s.tps != 10 {
		t.Fatalf("non-positive tps applied: %d", s.tps)
	}
	s.apply(stream.Control{Type: "tps", Value: 25})
	s.apply(stream.Control{Type: "step"})
	s.apply(stream.Control{Type: "reset"})
	if s.tps != 25 || !s.single || !s.reset {
		t.Fatalf("state %+v", s)
	}
}

func TestLiveStepsUntilCancelled(t *testing.T) {
	sim, err := tumor.NewWithConfig(smallScenario("live", 1))
	if err != nil {
		t.Fatal(err)
	}
	hub := stream.NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go hub.Run(ctx)

	if err := Live(ctx, sim, hub, 100); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if sim.Sample().Step == 0 {
		t.Fatal("live loop never stepped")
	}
}
