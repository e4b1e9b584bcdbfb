package runner

import (
	"context"
	"time"

	"tumor-ca/internal/core"
	"tumor-ca/internal/stream"
)

// liveState is the viewer-controllable part of a live run.
type liveState struct {
	paused bool
	single bool
	reset  bool
	tps    int
}

func (s *liveState) apply(ctl stream.Control) {
	switch ctl.Type {
	case "pause":
		s.paused = true
	case "resume":
		s.paused = false
	case "toggle":
		s.paused = !s.paused
	case "step":
		s.single = true
	case "reset":
		s.reset = true
	case "tps":
		if ctl.Value >= 1 {
			s.tps = int(ctl.Value)
		}
	}
}

// Live steps sim at tps ticks per second and publishes every step to hub
// until ctx is done. Viewers can pause, single-step, reset and change the
// rate through hub.Controls.
func Live(ctx context.Context, sim core.Sim, hub *stream.Hub, tps int) error {
	state := liveState{tps: tps}
	pace := core.NewFixedStep(tps)
	ticker := time.NewTicker(pollInterval(pace))
	defer ticker.Stop()

	steps := 0
	publish := func() error {
		var stats []core.Stat
		if p, ok := sim.(core.StatsProvider); ok {
			stats = p.Stats()
		}
		return hub.Publish(stream.NewFrame(sim.Name(), steps, sim.Size(), stats, sim.Pixels()))
	}
	if err := publish(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ctl := <-hub.Controls:
			before := state.tps
			state.apply(ctl)
			if state.tps != before {
				pace.SetTPS(state.tps)
				ticker.Reset(pollInterval(pace))
			}
			if state.reset {
				state.reset = false
				sim.Reset(0)
				steps = 0
				if err := publish(); err != nil {
					return err
				}
			}
		case now := <-ticker.C:
			if !pace.ShouldStep(now) {
				continue
			}
			if state.paused && !state.single {
				continue
			}
			state.single = false
			sim.Step()
			steps++
			if err := publish(); err != nil {
				return err
			}
		}
	}
}

// pollInterval samples the pacer a few times per tick.
func pollInterval(pace *core.FixedStep) time.Duration {
	d := pace.Interval() / 4
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}
