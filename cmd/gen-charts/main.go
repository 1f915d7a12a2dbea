package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/internal/testcharts"
	"github.com/okian/strain/pkg/logger"
)

const generateTimeout = 10 * time.Minute

var (
	seed    = kingpin.Flag("seed", "Base random seed; chart i uses seed+i").Default("1").Int64()
	charts  = kingpin.Flag("charts", "Number of charts to generate").Short('c').Default("8").Int()
	objects = kingpin.Flag("objects", "Hit objects per chart").Short('n').Default("400").Int()
	workers = kingpin.Flag("workers", "Concurrent generators").Short('w').Default("0").Int()
	mods    = kingpin.Flag("mods", "Modifiers stamped on every chart, e.g. HR,DT").Short('m').Default("").String()
	cs      = kingpin.Flag("cs", "Circle size before modifiers").Default("4").Float64()
	ar      = kingpin.Flag("ar", "Approach rate before modifiers").Default("9").Float64()
	out     = kingpin.Flag("out", "Output directory").Short('o').Default("charts").String()
)

func main() {
	kingpin.Version("0.1.0")
	kingpin.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}
	log := logger.Get().Named("gen-charts")

	m, err := object.ParseMods(*mods)
	if err != nil {
		kingpin.Fatalf("--mods: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	cfg := testcharts.Config{
		Seed:            *seed,
		Charts:          *charts,
		ObjectsPerChart: *objects,
		Workers:         *workers,
		Mods:            m,
		CircleSize:      *cs,
		ApproachRate:    *ar,
		OutputDir:       *out,
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}

	stats, _, err := testcharts.Run(ctx, cfg)
	if err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "done",
		logger.Int("charts", stats.Charts),
		logger.Int("objects", stats.Objects),
		logger.Int("circles", stats.Circles),
		logger.Int("sliders", stats.Sliders),
		logger.Int("spinners", stats.Spinners),
	)
}
