package report

import (
	"errors"
	"fmt"
	"io"

	"tumor-ca/internal/sims/tumor"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewSamples is returned when a chart is requested for fewer than two
// samples; a line needs two points.
var ErrTooFewSamples = errors.New("report: at least two samples are needed")

// Series accumulates the population curves of one run.
type Series struct {
	Days          []float64
	Immune        []float64
	Tumor         []float64
	Proliferating []float64
	Stem          []float64
}

// Add appends one sample.
func (s *Series) Add(sample tumor.Sample) {
	s.Days = append(s.Days, float64(sample.Time)/24)
	s.Immune = append(s.Immune, float64(sample.Immune))
	s.Tumor = append(s.Tumor, float64(sample.Tumor))
	s.Proliferating = append(s.Proliferating, float64(sample.Proliferating))
	s.Stem = append(s.Stem, float64(sample.Stem))
}

// Len is the number of samples recorded.
func (s *Series) Len() int { return len(s.Days) }

// RenderPopulationChart draws the population curves over days as a PNG.
func RenderPopulationChart(w io.Writer, s *Series, width, height int) error {
	if s.Len() < 2 {
		return ErrTooFewSamples
	}
	xMin, xMax := s.Days[0], s.Days[len(s.Days)-1]
	if xMax <= xMin {
		xMax = xMin + 1
	}
	yMax := 1.0
	for _, ys := range [][]float64{s.Immune, s.Tumor, s.Proliferating, s.Stem} {
		for _, y := range ys {
			if y > yMax {
				yMax = y
			}
		}
	}

	line := func(name string, ys []float64, c drawing.Color) chart.ContinuousSeries {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: s.Days,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2.0,
			},
		}
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "day",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "cells",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
		},
		Series: []chart.Series{
			line("Immune", s.Immune, chart.ColorGreen),
			line("Tumor", s.Tumor, chart.ColorRed),
			line("Proliferating", s.Proliferating, drawing.Color{R: 255, G: 165, B: 0, A: 255}),
			line("Stem", s.Stem, drawing.Color{R: 255, G: 51, B: 255, A: 255}),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render population chart: %w", err)
	}
	return nil
}
