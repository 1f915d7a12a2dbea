package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/okian/strain/internal/config"
	"github.com/okian/strain/internal/testcharts"
	"github.com/okian/strain/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func writeCharts(t *testing.T, n int) string {
	cfg := testcharts.DefaultConfig()
	cfg.Charts = n
	cfg.ObjectsPerChart = 100
	cfg.OutputDir = filepath.Join(t.TempDir(), "charts")
	if _, _, err := testcharts.Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	return cfg.OutputDir
}

func parse(args ...string) (*options, error) {
	var opts options
	_, err := newApp(config.New(), &opts).Parse(args)
	return &opts, err
}

func TestFlags(t *testing.T) {
	convey.Convey("Given the command line", t, func() {
		convey.Convey("When only a chart is named", func() {
			opts, err := parse("chart.yaml")

			convey.Convey("Then defaults come from config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(opts.Paths, convey.ShouldResemble, []string{"chart.yaml"})
				convey.So(opts.RankBy, convey.ShouldEqual, "aim")
				convey.So(opts.TopN, convey.ShouldEqual, 20)
				convey.So(opts.Output, convey.ShouldEqual, outputTable)
				convey.So(opts.Parallel, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When flags are given", func() {
			opts, err := parse("-m", "HD,DT", "--rank-by", "speed", "-n", "3", "--parallel", "-o", "yaml", "a.yaml", "b.yaml")

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(opts.Mods, convey.ShouldEqual, "HD,DT")
				convey.So(opts.RankBy, convey.ShouldEqual, "speed")
				convey.So(opts.TopN, convey.ShouldEqual, 3)
				convey.So(opts.Parallel, convey.ShouldBeTrue)
				convey.So(opts.Output, convey.ShouldEqual, outputYAML)
				convey.So(opts.Paths, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the ranking skill is unknown", func() {
			_, err := parse("--rank-by", "accuracy", "a.yaml")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When no chart is named", func() {
			_, err := parse()
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestExpandPaths(t *testing.T) {
	convey.Convey("Given a directory with charts and other files", t, func() {
		dir := t.TempDir()
		for _, name := range []string{"b.yaml", "a.json", "notes.txt", "c.YML"} {
			convey.So(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600), convey.ShouldBeNil)
		}
		convey.So(os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755), convey.ShouldBeNil)

		files, err := expandPaths([]string{dir})

		convey.Convey("Then only chart files are picked, sorted", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(files, convey.ShouldResemble, []string{
				filepath.Join(dir, "a.json"),
				filepath.Join(dir, "b.yaml"),
				filepath.Join(dir, "c.YML"),
			})
		})

		convey.Convey("Then a missing path is an error", func() {
			_, err := expandPaths([]string{filepath.Join(dir, "nope")})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a directory of generated charts", t, func() {
		dir := writeCharts(t, 4)
		opts, err := parse("--workers", "2", "--all", dir)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When rating them as a table", func() {
			var out bytes.Buffer
			err := run(ctx, opts, &out)

			convey.Convey("Then the ranking and every chart are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				text := out.String()
				convey.So(text, convey.ShouldContainSubstring, "RANK")
				convey.So(text, convey.ShouldContainSubstring, "AIM")
				convey.So(text, convey.ShouldContainSubstring, "RHYTHM")
				convey.So(strings.Count(text, "\n"), convey.ShouldBeGreaterThanOrEqualTo, 1+4+1+1+4)
			})
		})

		convey.Convey("When rating them as YAML with metrics", func() {
			opts.Output = outputYAML
			opts.Peaks = true
			opts.RankBy = "stamina"
			opts.MetricsOut = filepath.Join(t.TempDir(), "metrics.txt")

			var out bytes.Buffer
			err := run(ctx, opts, &out)

			convey.Convey("Then the report decodes and metrics are written", func() {
				convey.So(err, convey.ShouldBeNil)

				var rep report
				convey.So(yaml.Unmarshal(out.Bytes(), &rep), convey.ShouldBeNil)
				convey.So(rep.RankBy, convey.ShouldEqual, "stamina")
				convey.So(rep.Ranking, convey.ShouldHaveLength, 4)
				convey.So(rep.Charts, convey.ShouldHaveLength, 4)
				convey.So(rep.Charts[0].Attributes, convey.ShouldNotBeNil)
				convey.So(rep.Charts[0].Attributes.Peaks, convey.ShouldNotBeEmpty)

				dump, readErr := os.ReadFile(opts.MetricsOut)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(dump), convey.ShouldContainSubstring, "strain_difficulty_")
			})
		})

		convey.Convey("When the same file is named twice", func() {
			files, _ := expandPaths([]string{dir})
			opts.Paths = []string{files[0], files[0]}

			var out bytes.Buffer
			err := run(ctx, opts, &out)

			convey.Convey("Then the duplicate is skipped without failing", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a broken chart is among them", func() {
			convey.So(os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("objects: [{flow: 7}]\n"), 0o600), convey.ShouldBeNil)

			var out bytes.Buffer
			err := run(ctx, opts, &out)

			convey.Convey("Then the rest are rated and the run reports the failure", func() {
				convey.So(errors.Is(err, ErrChartsFailed), convey.ShouldBeTrue)
				convey.So(out.String(), convey.ShouldContainSubstring, "RANK")
			})
		})

		convey.Convey("When the modifiers are invalid", func() {
			opts.Mods = "ZZ"
			err := run(ctx, opts, io.Discard)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an empty directory", t, func() {
		opts, err := parse(t.TempDir())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the run fails", func() {
			convey.So(run(ctx, opts, io.Discard), convey.ShouldNotBeNil)
		})
	})
}
