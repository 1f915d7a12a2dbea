package testcharts

import (
	"github.com/okian/strain/internal/domain/object"
)

// Config holds configuration for chart generation.
type Config struct {
	Seed            int64       // Base seed; chart i uses Seed+i
	Charts          int         // Number of charts to generate
	ObjectsPerChart int         // Hit objects per chart
	Workers         int         // Concurrent generators
	Mods            object.Mods // Modifiers stamped on every chart
	CircleSize      float64     // Unmodded circle size
	ApproachRate    float64     // Unmodded approach rate
	OutputDir       string      // Directory charts are written to
}

// DefaultConfig returns a config producing a handful of mid-size charts.
func DefaultConfig() Config {
	return Config{
		Seed:            1,
		Charts:          defaultCharts,
		ObjectsPerChart: defaultObjectsPerChart,
		Workers:         defaultWorkers,
		CircleSize:      defaultCircleSize,
		ApproachRate:    defaultApproachRate,
		OutputDir:       ".",
	}
}

// Stats summarises a generation run.
type Stats struct {
	Charts   int
	Objects  int
	Circles  int
	Sliders  int
	Spinners int
}
