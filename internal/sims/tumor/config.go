package tumor

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Seed places one entity when the simulation is reset.
type Seed struct {
	Kind      string `yaml:"kind"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Potential int    `yaml:"potential"`
}

// Config controls one tumor simulation run.
type Config struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   int64  `yaml:"seed"`

	Params Params `yaml:"params"`

	// Seeds is the initial population. When empty, a true stem cell with the
	// maximum potential is placed at the centre and one immune cell at (1,1).
	Seeds []Seed `yaml:"seeds"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "tumor",
		Width:  500,
		Height: 500,
		Seed:   1337,
		Params: DefaultParams(),
	}
}

// InitialSeeds returns the configured seeds, or the default population.
func (c Config) InitialSeeds() []Seed {
	if len(c.Seeds) > 0 {
		return c.Seeds
	}
	return []Seed{
		{Kind: KindTrueStem.String(), X: c.Width / 2, Y: c.Height / 2, Potential: c.Params.MaxProliferationPotential},
		{Kind: KindImmune.String(), X: 1, Y: 1},
	}
}

// Validate checks dimensions, parameters and that every seed can be placed.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Width, c.Height))
	}
	if err := c.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	probe := NewGrid(c.Width, c.Height)
	for i, s := range c.InitialSeeds() {
		kind, err := ParseKind(s.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed %d: %w", i, err))
			continue
		}
		if s.Potential < 0 {
			errs = append(errs, fmt.Errorf("seed %d: potential must be >= 0, got %d", i, s.Potential))
			continue
		}
		if err := probe.PlaceEntity(NewEntity(kind, s.Potential), s.X, s.Y); err != nil {
			errs = append(errs, fmt.Errorf("seed %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// FromMap populates the config from a string map (flag-style key/value
// pairs). Unparseable or negative values are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["name"]; ok && v != "" {
		c.Name = v
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	for _, f := range c.Params.fields() {
		v, ok := cfg[f.key]
		if !ok {
			continue
		}
		f.set(v)
	}
	if c.Params.Validate() != nil {
		c.Params = DefaultParams()
	}
	return c
}

type scenarioFile struct {
	Simulations []yaml.Node `yaml:"simulations"`
}

// LoadScenarios reads a YAML file holding a list of simulations. Every entry
// starts from DefaultConfig, so a scenario only lists what it changes.
func LoadScenarios(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes and validates scenario YAML.
func ParseScenarios(data []byte) ([]Config, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if len(file.Simulations) == 0 {
		return nil, errors.New("scenario file lists no simulations")
	}

	configs := make([]Config, 0, len(file.Simulations))
	names := map[string]bool{}
	for i := range file.Simulations {
		cfg := DefaultConfig()
		cfg.Name = fmt.Sprintf("sim%d", i+1)
		if err := file.Simulations[i].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i+1, err)
		}
		if names[cfg.Name] {
			return nil, fmt.Errorf("simulation %d: duplicate name %q", i+1, cfg.Name)
		}
		names[cfg.Name] = true
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid simulation %q: %w", cfg.Name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// paramField binds a parameter key to its storage for generic parsing and
// display.
type paramField struct {
	key, label, group string

	f *float64
	i *int
	b *bool
}

func (f paramField) set(v string) {
	switch {
	case f.f != nil:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			*f.f = parsed
		}
	case f.i != nil:
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			*f.i = parsed
		}
	case f.b != nil:
		if parsed, err := strconv.ParseBool(v); err == nil {
			*f.b = parsed
		}
	}
}

func (p *Params) fields() []paramField {
	return []paramField{
		{key: "p0", label: "Base proliferation", group: "Growth", f: &p.P0},
		{key: "rmax", label: "Max radius", group: "Growth", f: &p.Rmax},
		{key: "max_proliferation_potential", label: "Max potential", group: "Growth", i: &p.MaxProliferationPotential},
		{key: "stem_self_renewal", label: "Stem self-renewal", group: "Growth", f: &p.StemSelfRenewal},

		{key: "ap", label: "Rim width factor", group: "Geometry", f: &p.Ap},
		{key: "bn", label: "Necrotic factor", group: "Geometry", f: &p.Bn},
		{key: "max_energy_level", label: "Max energy", group: "Geometry", i: &p.MaxEnergyLevel},
		{key: "quiescent_energy_level", label: "Quiescent energy", group: "Geometry", i: &p.QuiescentEnergyLevel},
		{key: "necrotic_energy_level", label: "Necrotic energy", group: "Geometry", i: &p.NecroticEnergyLevel},

		{key: "pdt", label: "Immune kill", group: "Immune", f: &p.PdT},
		{key: "pdi", label: "Immune death", group: "Immune", f: &p.PdI},
		{key: "immune_bias", label: "Walk bias", group: "Immune", f: &p.ImmuneBias},
		{key: "immune_cap", label: "Recruitment cap", group: "Immune", i: &p.ImmuneCap},
		{key: "recruit_rate", label: "Recruitment rate", group: "Immune", f: &p.RecruitRate},
		{key: "recruit_saturation", label: "Recruitment saturation", group: "Immune", f: &p.RecruitSaturation},

		{key: "ypc", label: "Max kill (prolif.)", group: "Chemotherapy", f: &p.YPC},
		{key: "yq", label: "Max kill (quiescent)", group: "Chemotherapy", f: &p.YQ},
		{key: "yi", label: "Max kill (immune)", group: "Chemotherapy", f: &p.YI},
		{key: "kpc", label: "Sensitivity (prolif.)", group: "Chemotherapy", f: &p.KPC},
		{key: "kq", label: "Sensitivity (quiescent)", group: "Chemotherapy", f: &p.KQ},
		{key: "ki", label: "Sensitivity (immune)", group: "Chemotherapy", f: &p.KI},
		{key: "ci", label: "Decay rate", group: "Chemotherapy", f: &p.Ci},
		{key: "pk", label: "Exposure", group: "Chemotherapy", f: &p.PK},
		{key: "drug_concentration", label: "Dose", group: "Chemotherapy", f: &p.DrugConcentration},
		{key: "treatment_start_time", label: "Start day", group: "Chemotherapy", i: &p.TreatmentStartTime},
		{key: "injection_interval", label: "Interval (days)", group: "Chemotherapy", i: &p.InjectionInterval},
		{key: "time_constant", label: "Active window (days)", group: "Chemotherapy", i: &p.TimeConstant},
		{key: "chemo_targets_immune", label: "Targets immune", group: "Chemotherapy", b: &p.ChemoTargetsImmune},

		{key: "time_delta", label: "Hours per step", group: "Clock", i: &p.TimeDelta},
	}
}
