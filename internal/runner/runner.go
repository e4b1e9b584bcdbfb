// Package runner executes tumor scenarios headlessly and writes their
// reports.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"tumor-ca/internal/report"
	"tumor-ca/internal/sims/tumor"
)

// Options controls a batch run.
type Options struct {
	Steps   int
	Workers int
	// OutDir receives one directory per scenario. Empty disables all files.
	OutDir string

	Video      bool
	VideoScale int
	FPS        int
	Chart      bool

	// Logf receives progress lines; nil silences them.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Result summarises one scenario.
type Result struct {
	Name      string
	Final     tumor.Sample
	PeakTumor int
	Elapsed   time.Duration
	Err       error
}

type job struct {
	index int
	cfg   tumor.Config
}

// Run executes every scenario on a pool of workers. Results keep the order
// of scenarios.
func Run(ctx context.Context, scenarios []tumor.Config, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(scenarios) {
		workers = len(scenarios)
	}

	jobs := make(chan job)
	results := make([]Result, len(scenarios))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = RunScenario(ctx, j.cfg, opts)
			}
		}()
	}

	for i, cfg := range scenarios {
		jobs <- job{index: i, cfg: cfg}
	}
	close(jobs)
	wg.Wait()
	return results
}

// RunScenario steps one scenario and writes its CSV, chart and video into
// OutDir/<name>.
func RunScenario(ctx context.Context, cfg tumor.Config, opts Options) (res Result) {
	res.Name = cfg.Name
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	sim, err := tumor.NewWithConfig(cfg)
	if err != nil {
		res.Err = err
		return res
	}

	out, err := openOutputs(cfg.Name, sim, opts)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if cerr := out.close(); cerr != nil && res.Err == nil {
			res.Err = cerr
		}
	}()

	var series report.Series
	for i := 0; i < opts.Steps; i++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		sim.Step()
		sample := sim.Sample()
		series.Add(sample)
		if sample.Tumor > res.PeakTumor {
			res.PeakTumor = sample.Tumor
		}
		if err := out.record(sim, sample); err != nil {
			res.Err = err
			return res
		}
		if sample.Step%100 == 0 {
			opts.logf("%s: day %d tumor=%d immune=%d rt=%.1f", cfg.Name, sample.Day, sample.Tumor, sample.Immune, sample.Rt)
		}
	}
	res.Final = sim.Sample()

	if opts.Chart && out.dir != "" {
		if err := writeChart(filepath.Join(out.dir, "population.png"), &series); err != nil && !errors.Is(err, report.ErrTooFewSamples) {
			res.Err = err
		}
	}
	return res
}

type outputs struct {
	dir   string
	file  *os.File
	csv   *report.CSVWriter
	video *report.Recorder
}

func openOutputs(name string, sim *tumor.Sim, opts Options) (*outputs, error) {
	out := &outputs{}
	if opts.OutDir == "" {
		return out, nil
	}
	out.dir = filepath.Join(opts.OutDir, name)
	if err := os.MkdirAll(out.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(out.dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to create stats file: %w", err)
	}
	out.file = f
	if out.csv, err = report.NewCSVWriter(f); err != nil {
		f.Close()
		return nil, err
	}
	if opts.Video {
		fps := opts.FPS
		if fps <= 0 {
			fps = 10
		}
		out.video, err = report.NewRecorder(filepath.Join(out.dir, "sim.avi"), sim.Size(), opts.VideoScale, int32(fps))
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return out, nil
}

func (o *outputs) record(sim *tumor.Sim, s tumor.Sample) error {
	if o.csv != nil {
		if err := o.csv.Write(s); err != nil {
			return err
		}
	}
	if o.video != nil {
		label := fmt.Sprintf("day %d  tumor %d  immune %d", s.Day, s.Tumor, s.Immune)
		if s.Treatment {
			label += "  chemo"
		}
		if err := o.video.Frame(sim.Pixels(), label); err != nil {
			return err
		}
	}
	return nil
}

func (o *outputs) close() error {
	var errs []error
	if o.csv != nil {
		errs = append(errs, o.csv.Flush())
	}
	if o.file != nil {
		errs = append(errs, o.file.Close())
	}
	if o.video != nil {
		errs = append(errs, o.video.Close())
	}
	return errors.Join(errs...)
}

func writeChart(path string, s *report.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := report.RenderPopulationChart(f, s, 960, 480); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
