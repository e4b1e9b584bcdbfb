package tumor

import (
	"errors"
	"fmt"
	"math"
)

// Params holds the biological and pharmacokinetic constants of a run. They
// never change once the simulation has been built.
type Params struct {
	// Growth.
	P0                        float64 `yaml:"p0"`
	Rmax                      float64 `yaml:"rmax"`
	MaxProliferationPotential int     `yaml:"max_proliferation_potential"`
	StemSelfRenewal           float64 `yaml:"stem_self_renewal"`

	// Tumor geometry.
	Ap float64 `yaml:"ap"`
	Bn float64 `yaml:"bn"`

	// Nutrient energy.
	MaxEnergyLevel       int `yaml:"max_energy_level"`
	QuiescentEnergyLevel int `yaml:"quiescent_energy_level"`
	NecroticEnergyLevel  int `yaml:"necrotic_energy_level"`

	// Immune response.
	PdT               float64 `yaml:"pdt"`
	PdI               float64 `yaml:"pdi"`
	ImmuneBias        float64 `yaml:"immune_bias"`
	ImmuneCap         int     `yaml:"immune_cap"`
	RecruitRate       float64 `yaml:"recruit_rate"`
	RecruitSaturation float64 `yaml:"recruit_saturation"`

	// Chemotherapy.
	YPC                float64 `yaml:"ypc"`
	YQ                 float64 `yaml:"yq"`
	YI                 float64 `yaml:"yi"`
	KPC                float64 `yaml:"kpc"`
	KQ                 float64 `yaml:"kq"`
	KI                 float64 `yaml:"ki"`
	Ci                 float64 `yaml:"ci"`
	PK                 float64 `yaml:"pk"`
	DrugConcentration  float64 `yaml:"drug_concentration"`
	TreatmentStartTime int     `yaml:"treatment_start_time"`
	InjectionInterval  int     `yaml:"injection_interval"`
	TimeConstant       int     `yaml:"time_constant"`
	ChemoTargetsImmune bool    `yaml:"chemo_targets_immune"`

	// Clock, in hours per step.
	TimeDelta int `yaml:"time_delta"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		P0:                        0.7,
		Rmax:                      100,
		MaxProliferationPotential: 20,
		StemSelfRenewal:           0.1,

		Ap: 0.42,
		Bn: 0.53,

		MaxEnergyLevel:       30,
		QuiescentEnergyLevel: 5,
		NecroticEnergyLevel:  2,

		PdT:               0.5,
		PdI:               0.5,
		ImmuneBias:        0.2,
		ImmuneCap:         1000,
		RecruitRate:       2,
		RecruitSaturation: 1000,

		YPC:                0.55,
		YQ:                 0.4,
		YI:                 0.7,
		KPC:                0.8,
		KQ:                 0.4,
		KI:                 0.6,
		Ci:                 0.5,
		PK:                 1,
		DrugConcentration:  10,
		TreatmentStartTime: 10,
		InjectionInterval:  10,
		TimeConstant:       3,

		TimeDelta: 5,
	}
}

// Validate reports every constant that would make the model ill-defined.
func (p Params) Validate() error {
	var errs []error
	probs := []struct {
		name string
		v    float64
	}{
		{"p0", p.P0}, {"stem_self_renewal", p.StemSelfRenewal},
		{"pdt", p.PdT}, {"pdi", p.PdI}, {"immune_bias", p.ImmuneBias},
		{"ypc", p.YPC}, {"yq", p.YQ}, {"yi", p.YI},
	}
	for _, pr := range probs {
		if pr.v < 0 || pr.v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %g", pr.name, pr.v))
		}
	}
	if p.Rmax <= 0 {
		errs = append(errs, fmt.Errorf("rmax must be positive, got %g", p.Rmax))
	}
	if p.MaxProliferationPotential < 0 {
		errs = append(errs, fmt.Errorf("max_proliferation_potential must be >= 0, got %d", p.MaxProliferationPotential))
	}
	if p.NecroticEnergyLevel > p.QuiescentEnergyLevel || p.QuiescentEnergyLevel > p.MaxEnergyLevel {
		errs = append(errs, fmt.Errorf("energy levels must satisfy necrotic <= quiescent <= max, got %d/%d/%d",
			p.NecroticEnergyLevel, p.QuiescentEnergyLevel, p.MaxEnergyLevel))
	}
	if p.InjectionInterval <= 0 {
		errs = append(errs, fmt.Errorf("injection_interval must be positive, got %d", p.InjectionInterval))
	}
	if p.TimeConstant < 0 || p.TreatmentStartTime < 0 {
		errs = append(errs, errors.New("treatment_start_time and time_constant must be >= 0"))
	}
	if p.TimeDelta <= 0 {
		errs = append(errs, fmt.Errorf("time_delta must be positive, got %d", p.TimeDelta))
	}
	if p.ImmuneCap < 0 || p.RecruitRate < 0 || p.RecruitSaturation <= 0 {
		errs = append(errs, errors.New("immune_cap and recruit_rate must be >= 0, recruit_saturation > 0"))
	}
	for _, k := range []struct {
		name string
		v    float64
	}{{"kpc", p.KPC}, {"kq", p.KQ}, {"ki", p.KI}, {"ci", p.Ci}, {"pk", p.PK}, {"drug_concentration", p.DrugConcentration}} {
		if k.v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %g", k.name, k.v))
		}
	}
	return errors.Join(errs...)
}

// Variables couples the constant parameters with the mutable clock and the
// tumor statistics of a run.
type Variables struct {
	Params

	Name string
	// Time is the simulated time in hours.
	Time int
	// Rt is the mean distance of the tumor's edge cells from the centre.
	Rt              float64
	InjectionNumber int

	lastInjectionDay int
}

// NewVariables starts a clock at zero with the given constants.
func NewVariables(p Params) *Variables {
	return &Variables{Params: p, lastInjectionDay: -1}
}

// TimeStep advances the clock by one time delta.
func (v *Variables) TimeStep() { v.Time += v.TimeDelta }

// DaysElapsed is the number of whole days since the start.
func (v *Variables) DaysElapsed() int { return v.Time / 24 }

// Days is the elapsed time in fractional days.
func (v *Variables) Days() float64 { return float64(v.Time) / 24 }

// IsTreatment reports whether the drug is active in the blood today.
func (v *Variables) IsTreatment() bool {
	days := v.DaysElapsed()
	if days < v.TreatmentStartTime || v.InjectionInterval <= 0 {
		return false
	}
	return (days-v.TreatmentStartTime)%v.InjectionInterval < v.TimeConstant
}

// IsInjectionStart reports whether today is the first day of a treatment window.
func (v *Variables) IsInjectionStart() bool {
	if !v.IsTreatment() {
		return false
	}
	return (v.DaysElapsed()-v.TreatmentStartTime)%v.InjectionInterval == 0
}

// AdvanceInjections counts today's injection once per injection day and
// reports whether it did.
func (v *Variables) AdvanceInjections() bool {
	if !v.IsInjectionStart() {
		return false
	}
	day := v.DaysElapsed()
	if day == v.lastInjectionDay {
		return false
	}
	v.lastInjectionDay = day
	v.InjectionNumber++
	return true
}

// Wp is the width of the proliferating rim. Recomputed on every call.
func (v *Variables) Wp() float64 { return v.Ap * math.Pow(v.Rt, 2.0/3.0) }

// Rn is the radius below which quiescent cells become necrotic. Recomputed on
// every call.
func (v *Variables) Rn() float64 { return v.Rt - v.Bn*math.Pow(v.Rt, 2.0/3.0) }

// Concentration is the drug level in the blood: every injection given so far
// contributes a dose that decays exponentially with rate Ci per day.
func (v *Variables) Concentration() float64 {
	if v.InjectionNumber == 0 {
		return 0
	}
	now := v.Days()
	total := 0.0
	for k := 0; k < v.InjectionNumber; k++ {
		given := float64(v.TreatmentStartTime + k*v.InjectionInterval)
		elapsed := now - given
		if elapsed < 0 {
			continue
		}
		total += v.DrugConcentration * math.Exp(-v.Ci*elapsed)
	}
	return total
}

// DrugDeathProbability maps the current concentration to a kill probability
// for a cell type with maximum kill fraction y and sensitivity k.
func (v *Variables) DrugDeathProbability(y, k float64) float64 {
	return y * (1 - math.Exp(-k*v.Concentration()))
}

// ExposureProbability is the chance that a cell is reached by the drug at all.
func (v *Variables) ExposureProbability() float64 {
	switch {
	case v.PK < 0:
		return 0
	case v.PK > 1:
		return 1
	}
	return v.PK
}
