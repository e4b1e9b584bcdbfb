package app

import (
	"errors"
	"fmt"

	"tumor-ca/internal/core"
	"tumor-ca/internal/sims/tumor"
)

// ErrUnknownSim is returned when neither the registry nor the scenario file
// knows the requested simulation.
var ErrUnknownSim = errors.New("unknown simulation")

// LoadSim builds the simulation described by cfg. A scenario file takes
// precedence over the registry.
func LoadSim(cfg *Config) (core.Sim, error) {
	if cfg.ConfigFile != "" {
		scenarios, err := tumor.LoadScenarios(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		sc, err := pickScenario(scenarios, cfg.Scenario)
		if err != nil {
			return nil, err
		}
		sim, err := tumor.NewWithConfig(sc)
		if err != nil {
			return nil, err
		}
		if cfg.Seed != 0 {
			sim.Reset(cfg.Seed)
		}
		return sim, nil
	}

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownSim, cfg.Sim, core.Names())
	}
	sim := factory(cfg.Overrides)
	if cfg.Seed != 0 {
		sim.Reset(cfg.Seed)
	}
	return sim, nil
}

func pickScenario(scenarios []tumor.Config, name string) (tumor.Config, error) {
	if name == "" {
		return scenarios[0], nil
	}
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, nil
		}
	}
	return tumor.Config{}, fmt.Errorf("%w: no scenario named %q", ErrUnknownSim, name)
}
