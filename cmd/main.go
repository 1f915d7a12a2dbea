package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/okian/strain/internal/adapters/chartfile"
	app "github.com/okian/strain/internal/app"
	"github.com/okian/strain/internal/config"
	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/pkg/logger"
	"github.com/okian/strain/pkg/metrics"
)

const (
	shutdownTimeout = 30 * time.Second
	version         = "0.1.0"
)

// Output formats.
const (
	outputTable = "table"
	outputYAML  = "yaml"
)

// ErrChartsFailed is returned when some charts could not be rated.
var ErrChartsFailed = errors.New("charts failed")

// options is everything the command line controls.
type options struct {
	Paths          []string
	Mods           string
	RankBy         string
	TopN           int
	Workers        int
	QueueSize      int
	DedupeSize     int
	Parallel       bool
	Peaks          bool
	Output         string
	MetricsOut     string
	LogLevel       string
	LogFormat      string
	ShowAllResults bool
}

// newApp builds the kingpin application. Flag defaults come from cfg so
// flags override file and environment settings.
func newApp(cfg *config.Config, opts *options) *kingpin.Application {
	a := kingpin.New("strain", "Rate chart difficulty: aim, speed, stamina and rhythm complexity.")
	a.Version(version)
	a.HelpFlag.Short('h')

	a.Arg("charts", "Chart files or directories of charts (.yaml, .yml, .json)").Required().StringsVar(&opts.Paths)
	a.Flag("mods", "Modifiers applied to every chart, e.g. HD,DT").Short('m').Default(cfg.Mods).StringVar(&opts.Mods)
	a.Flag("rank-by", "Skill to rank charts by").Short('r').Default(cfg.RankBy).EnumVar(&opts.RankBy, difficulty.SkillNames...)
	a.Flag("top", "Number of ranked charts to print").Short('n').Default(strconv.Itoa(cfg.TopN)).IntVar(&opts.TopN)
	a.Flag("workers", "Rating workers").Short('w').Default(strconv.Itoa(cfg.WorkerCount)).IntVar(&opts.Workers)
	a.Flag("queue-size", "Maximum queued charts").Default(strconv.Itoa(cfg.QueueSize)).IntVar(&opts.QueueSize)
	a.Flag("dedupe-size", "Remembered chart fingerprints, 0 for unbounded").Default(strconv.Itoa(cfg.DedupeSize)).IntVar(&opts.DedupeSize)
	a.Flag("parallel", "Run the skill passes of one chart concurrently").Default(strconv.FormatBool(cfg.ParallelSkills)).BoolVar(&opts.Parallel)
	a.Flag("peaks", "Include per-section strain peaks in YAML output").Default(strconv.FormatBool(cfg.KeepPeaks)).BoolVar(&opts.Peaks)
	a.Flag("output", "Output format").Short('o').Default(outputTable).EnumVar(&opts.Output, outputTable, outputYAML)
	a.Flag("metrics-out", "Write Prometheus text metrics to this file on exit").Default(cfg.MetricsOut).StringVar(&opts.MetricsOut)
	a.Flag("log-level", "Log level: debug, info, warn, error").Default(cfg.LogLevel).StringVar(&opts.LogLevel)
	a.Flag("log-format", "Log format: text or json").Default(cfg.LogFormat).EnumVar(&opts.LogFormat, logger.FormatText, logger.FormatJSON)
	a.Flag("all", "Print every rated chart, not only the ranking").Short('a').BoolVar(&opts.ShowAllResults)
	return a
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(2)
	}

	var opts options
	kingpin.MustParse(newApp(cfg, &opts).Parse(os.Args[1:]))

	if err := logger.Init(logger.WithFormat(opts.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}
	if err := logger.SetLevelString(opts.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log level; falling back to info", logger.String("log_level", opts.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, &opts, os.Stdout); err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

// run rates every chart named by opts and writes the report to out.
func run(ctx context.Context, opts *options, out io.Writer) error {
	log := logger.Get().Named("strain")

	mods, err := parseMods(opts.Mods)
	if err != nil {
		return err
	}
	files, err := expandPaths(opts.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no chart files found in %s", strings.Join(opts.Paths, ", "))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(opts.Workers),
		app.WithQueueSize(max(opts.QueueSize, len(files))),
		app.WithDedupeSize(opts.DedupeSize),
		app.WithRankBy(opts.RankBy),
		app.WithMods(mods),
		app.WithCalculatorOptions(
			difficulty.WithParallel(opts.Parallel),
			difficulty.WithPeaks(opts.Peaks),
		),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn(ctx, "service stop", logger.Error(err))
		}
	}()

	var failed, duplicates int
	for _, path := range files {
		c, err := chartfile.Load(path)
		if err != nil {
			failed++
			log.Error(ctx, "skipping chart", logger.String("path", path), logger.Error(err))
			continue
		}
		if _, err := svc.Submit(ctx, c); err != nil {
			if errors.Is(err, app.ErrDuplicateChart) {
				duplicates++
				log.Warn(ctx, "duplicate chart", logger.String("path", path), logger.String("chartID", c.ID))
				continue
			}
			failed++
			log.Error(ctx, "submit failed", logger.String("path", path), logger.Error(err))
		}
	}

	if err := svc.Wait(ctx); err != nil {
		return err
	}

	top, err := svc.TopN(ctx, opts.TopN)
	if err != nil {
		return err
	}
	results := svc.Results()
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	rep := newReport(svc.RankBy(), top, results, opts.Peaks)
	switch opts.Output {
	case outputYAML:
		err = rep.writeYAML(out)
	default:
		err = rep.writeTable(out, terminalWidth(out), opts.ShowAllResults)
	}
	if err != nil {
		return err
	}

	if opts.MetricsOut != "" {
		if err := writeMetrics(opts.MetricsOut); err != nil {
			return err
		}
	}

	log.Info(ctx, "run complete",
		logger.Int("files", len(files)),
		logger.Int("rated", len(results)),
		logger.Int("duplicates", duplicates),
		logger.Int("failed", failed),
	)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChartsFailed, failed, len(files))
	}
	return nil
}

// expandPaths replaces directories by the chart files directly inside them.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml", ".json":
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseMods(s string) (object.Mods, error) {
	m, err := object.ParseMods(s)
	if err != nil {
		return object.ModNone, fmt.Errorf("--mods: %w", err)
	}
	return m, nil
}

func writeMetrics(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("metrics out: %w", err)
	}
	if err := metrics.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
