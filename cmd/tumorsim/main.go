package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"tumor-ca/internal/runner"
	"tumor-ca/internal/sims/tumor"
	"tumor-ca/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "scenario YAML file (default: one default scenario)")
	steps := flag.Int("steps", 2000, "steps to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	out := flag.String("out", "out", "output directory (empty disables files)")
	video := flag.Bool("video", false, "record an MJPEG video per scenario")
	videoScale := flag.Int("video-scale", 2, "pixels per cell in the video")
	fps := flag.Int("fps", 25, "video frame rate")
	chart := flag.Bool("chart", true, "render a population chart per scenario")
	serve := flag.String("serve", "", "stream the first scenario live on this address instead of batch running, e.g. :8080")
	tps := flag.Int("tps", 30, "live steps per second")
	flag.Parse()

	scenarios := []tumor.Config{tumor.DefaultConfig()}
	if *configPath != "" {
		var err error
		scenarios, err = tumor.LoadScenarios(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serve != "" {
		if err := serveLive(ctx, scenarios[0], *serve, *tps); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Printf("Running %d scenarios (%d workers, %d steps)", len(scenarios), *workers, *steps)
	start := time.Now()
	results := runner.Run(ctx, scenarios, runner.Options{
		Steps:      *steps,
		Workers:    *workers,
		OutDir:     *out,
		Video:      *video,
		VideoScale: *videoScale,
		FPS:        *fps,
		Chart:      *chart,
		Logf:       log.Printf,
	})

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("%s: %v", res.Name, res.Err)
			continue
		}
		f := res.Final
		log.Printf("%s: day %d tumor=%d (peak %d) stem=%d necrotic=%d immune=%d injections=%d in %s",
			res.Name, f.Day, f.Tumor, res.PeakTumor, f.Stem, f.Necrotic, f.Immune, f.Injections, res.Elapsed.Round(time.Millisecond))
	}
	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

func serveLive(ctx context.Context, cfg tumor.Config, addr string, tps int) error {
	sim, err := tumor.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	hub := stream.NewHub()
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	go func() {
		log.Printf("Streaming %q on ws://%s/ws", cfg.Name, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	}()

	if err := runner.Live(ctx, sim, hub, tps); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
