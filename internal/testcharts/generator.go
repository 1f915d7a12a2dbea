// Package testcharts generates deterministic synthetic charts with
// physically consistent processed fields.
package testcharts

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/strain/internal/adapters/chartfile"
	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/internal/domain/skills"
	"github.com/okian/strain/pkg/logger"
)

// Generate creates cfg.Charts charts concurrently. The output only depends
// on cfg, never on scheduling.
func Generate(ctx context.Context, cfg Config) ([]*chartfile.Chart, error) {
	if cfg.Charts < 1 || cfg.ObjectsPerChart < 1 {
		return nil, fmt.Errorf("generate: need at least one chart and one object, got %d and %d", cfg.Charts, cfg.ObjectsPerChart)
	}
	logger.Get().Info(ctx, "generating charts",
		logger.Int("charts", cfg.Charts),
		logger.Int("objects", cfg.ObjectsPerChart),
		logger.String("mods", cfg.Mods.String()),
	)

	type chartResult struct {
		index int
		chart *chartfile.Chart
	}

	charts := make([]*chartfile.Chart, cfg.Charts)
	resultChan := make(chan chartResult, cfg.Charts)

	workerCount := max(1, min(cfg.Workers, cfg.Charts))
	perWorker := cfg.Charts / workerCount

	for w := 0; w < workerCount; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == workerCount-1 {
			end = cfg.Charts
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				resultChan <- chartResult{index: i, chart: GenerateChart(cfg, i)}
			}
		}(start, end)
	}

	for i := 0; i < cfg.Charts; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during chart generation: %w", ctx.Err())
		case r := <-resultChan:
			charts[r.index] = r.chart
		}
	}

	logger.Get().Info(ctx, "generated charts successfully", logger.Int("count", len(charts)))
	return charts, nil
}

// GenerateChart creates chart number index of cfg.
func GenerateChart(cfg Config, index int) *chartfile.Chart {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(index))) //nolint:gosec // reproducible test data

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprint(cfg.Seed, index)))
	}

	g := &builder{
		rng:     rng,
		rate:    cfg.Mods.Rate(),
		radius:  object.CircleRadius(cfg.Mods.AdjustCircleSize(cfg.CircleSize)),
		preempt: cfg.Mods.Preempt(cfg.ApproachRate),
		pos:     object.Vector2{X: playfieldWidth / 2, Y: playfieldHeight / 2},
		time:    leadIn,
	}
	for len(g.objs) < cfg.ObjectsPerChart {
		g.section(cfg.ObjectsPerChart - len(g.objs))
	}

	return &chartfile.Chart{
		ID:      id.String(),
		Title:   fmt.Sprintf("synthetic #%d (seed %d)", index, cfg.Seed),
		Mods:    cfg.Mods,
		Objects: g.objs,
	}
}

// builder lays out objects in map time and derives processed fields in
// real time (map time divided by the rate).
type builder struct {
	rng     *rand.Rand
	rate    float64
	radius  float64
	preempt float64

	pos  object.Vector2
	dir  float64
	time float64

	objs []object.Object
}

func (g *builder) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *builder) pickSection() int {
	total := 0
	for _, w := range sectionWeights {
		total += w
	}
	n := g.rng.Intn(total)
	for kind, w := range sectionWeights {
		if n < w {
			return kind
		}
		n -= w
	}
	return sectionJump
}

// section appends one section of at most remaining objects.
func (g *builder) section(remaining int) {
	kind := g.pickSection()
	if kind == sectionSpinner {
		g.place(object.KindSpinner, object.Vector2{X: playfieldWidth / 2, Y: playfieldHeight / 2},
			g.uniform(jumpIntervalMax, 2*jumpIntervalMax), g.uniform(spinnerDurationMin, spinnerDurationMax))
		return
	}

	count := min(remaining, sectionMin+g.rng.Intn(sectionMax-sectionMin+1))
	switch kind {
	case sectionJump:
		interval := g.uniform(jumpIntervalMin, jumpIntervalMax)
		spacing := g.uniform(jumpSpacingMin, jumpSpacingMax)
		for i := 0; i < count; i++ {
			// Alternate sharp turns for jump patterns.
			g.dir += math.Pi - g.uniform(0, math.Pi/3)
			g.place(object.KindCircle, g.step(spacing), interval, 0)
		}
	case sectionStream:
		interval := g.uniform(streamIntervalMin, streamIntervalMax)
		spacing := g.uniform(streamSpacingMin, streamSpacingMax)
		curve := g.uniform(-0.3, 0.3)
		for i := 0; i < count; i++ {
			g.dir += curve
			g.place(object.KindCircle, g.step(spacing), interval, 0)
		}
	case sectionSlider:
		interval := g.uniform(jumpIntervalMin, jumpIntervalMax)
		for i := 0; i < count; i++ {
			duration := g.uniform(sliderDurationMin, sliderDurationMax)
			g.dir += g.uniform(-math.Pi/2, math.Pi/2)
			g.place(object.KindSlider, g.step(g.uniform(jumpSpacingMin/2, jumpSpacingMax)), interval, duration)
		}
	}
}

// step moves spacing pixels along the current direction, reflecting off
// the playfield edges.
func (g *builder) step(spacing float64) object.Vector2 {
	next := g.pos.Add(object.Vector2{X: math.Cos(g.dir), Y: math.Sin(g.dir)}.Scale(spacing))
	if next.X < 0 || next.X > playfieldWidth {
		g.dir = math.Pi - g.dir
		next.X = math.Max(0, math.Min(playfieldWidth, 2*g.pos.X-next.X))
	}
	if next.Y < 0 || next.Y > playfieldHeight {
		g.dir = -g.dir
		next.Y = math.Max(0, math.Min(playfieldHeight, 2*g.pos.Y-next.Y))
	}
	return next
}

// place appends an object starting interval ms (map time) after the end
// of the previous one.
func (g *builder) place(kind object.Kind, pos object.Vector2, interval, duration float64) {
	if len(g.objs) > 0 {
		g.time += interval
	}

	o := object.Object{
		StartTime: g.time / g.rate,
		Preempt:   g.preempt,
		Base: object.BaseObject{
			Kind:     kind,
			Radius:   g.radius,
			Position: pos,
			Duration: duration / g.rate,
		},
	}

	n := len(g.objs)
	if n == 0 {
		o.DeltaTime = minStrainTime
		o.StrainTime = minStrainTime
		o.GapTime = minStrainTime
	} else {
		prev := &g.objs[n-1]
		o.DeltaTime = o.StartTime - prev.StartTime
		o.StrainTime = math.Max(o.DeltaTime, minStrainTime)
		o.GapTime = math.Max(o.StartTime-(prev.StartTime+prev.Base.Duration), minGapTime)
		o.RawJumpDistance = pos.Sub(prev.Base.Position).Length()
		o.JumpDistance = o.RawJumpDistance * skills.NormalisedRadius / g.radius
	}
	if n >= 2 {
		o.Angle = object.AngleOf(turnAngle(g.objs[n-2].Base.Position, g.objs[n-1].Base.Position, pos))
	}

	o.BaseFlow = flowOf(o.StrainTime, o.JumpDistance)
	o.Flow = o.BaseFlow
	if o.Angle != nil {
		// Sharp turns break flow.
		o.Flow *= 1 - 0.5*skills.Transition(math.Abs(*o.Angle), math.Pi/3, 2*math.Pi/3)
	}

	g.objs = append(g.objs, o)
	g.pos = pos
	g.time += duration
}

// flowOf is high for fast, tightly spaced notes and low for slow or wide
// ones: 15000/ms is the stream tempo in BPM.
func flowOf(strainTime, jumpDistance float64) float64 {
	return skills.Transition(15000/strainTime, 90, 150) *
		(1 - skills.Transition(jumpDistance/skills.NormalisedRadius, 1, 2.5))
}

// turnAngle returns the signed turn from a->b to b->c: 0 is straight on,
// ±π a full reversal. Stacked points count as straight.
func turnAngle(a, b, c object.Vector2) float64 {
	u, v := b.Sub(a), c.Sub(b)
	if u.Length() == 0 || v.Length() == 0 {
		return 0
	}
	return math.Atan2(u.X*v.Y-u.Y*v.X, u.X*v.X+u.Y*v.Y)
}

// Summarise counts objects across charts.
func Summarise(charts []*chartfile.Chart) Stats {
	st := Stats{Charts: len(charts)}
	for _, c := range charts {
		for i := range c.Objects {
			st.Objects++
			switch c.Objects[i].Base.Kind {
			case object.KindCircle:
				st.Circles++
			case object.KindSlider:
				st.Sliders++
			case object.KindSpinner:
				st.Spinners++
			}
		}
	}
	return st
}
