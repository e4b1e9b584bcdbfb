package tumor

import (
	"strconv"

	"tumor-ca/internal/core"
)

func (s *Sim) Parameters() core.ParameterSnapshot {
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", s.cfg.Width),
				intParam("h", "Height", s.cfg.Height),
				int64Param("seed", "Seed", s.cfg.Seed),
			},
		},
	}
	params := s.cfg.Params
	index := map[string]int{}
	for _, f := range params.fields() {
		i, ok := index[f.group]
		if !ok {
			i = len(groups)
			index[f.group] = i
			groups = append(groups, core.ParameterGroup{Name: f.group})
		}
		groups[i].Params = append(groups[i].Params, f.parameter())
	}
	return core.ParameterSnapshot{Groups: groups}
}

func (f paramField) parameter() core.Parameter {
	switch {
	case f.f != nil:
		return floatParam(f.key, f.label, *f.f)
	case f.i != nil:
		return intParam(f.key, f.label, *f.i)
	default:
		return core.Parameter{Key: f.key, Label: f.label, Type: core.ParamTypeBool, Value: strconv.FormatBool(*f.b)}
	}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
