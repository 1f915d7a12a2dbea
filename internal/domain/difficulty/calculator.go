// Package difficulty drives a processed sequence through every skill and
// collects the results.
package difficulty

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/internal/domain/skills"
	"github.com/okian/strain/pkg/logger"
	"github.com/okian/strain/pkg/metrics"
)

// Rater rates a sequence under a modifier set.
type Rater interface {
	Calculate(ctx context.Context, seq *object.Sequence, mods object.Mods) (Attributes, error)
}

// Option applies a configuration option to a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithParallel runs each skill pass on its own goroutine.
func WithParallel(parallel bool) Option {
	return func(c *Calculator) {
		c.parallel = parallel
	}
}

// WithSkillOptions forwards options to every strain skill.
func WithSkillOptions(opts ...skills.Option) Option {
	return func(c *Calculator) {
		c.skillOpts = append(c.skillOpts, opts...)
	}
}

// WithPeaks keeps the per-skill section peaks in the attributes.
func WithPeaks(keep bool) Option {
	return func(c *Calculator) {
		c.keepPeaks = keep
	}
}

// WithMetrics records calculations on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Calculator) {
		c.metrics = m
	}
}

// Calculator is the stateless host driver. Every call builds fresh skill
// instances, so one Calculator is safe for concurrent use.
type Calculator struct {
	log       logger.Logger
	parallel  bool
	keepPeaks bool
	skillOpts []skills.Option
	metrics   *metrics.Manager
}

// NewCalculator creates a Calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type peaker interface {
	Peaks() []float64
}

type pass struct {
	name  string
	skill skills.Skill
	value float64
	took  time.Duration
}

func (c *Calculator) passes(mods object.Mods) []*pass {
	return []*pass{
		{name: SkillAim, skill: skills.NewAim(mods, skills.AimCombined, c.skillOpts...)},
		{name: SkillJump, skill: skills.NewAim(mods, skills.AimJump, c.skillOpts...)},
		{name: SkillFlow, skill: skills.NewAim(mods, skills.AimFlow, c.skillOpts...)},
		{name: SkillRawAim, skill: skills.NewAim(mods, skills.AimRaw, c.skillOpts...)},
		{name: SkillSpeed, skill: skills.NewSpeed(c.skillOpts...)},
		{name: SkillStamina, skill: skills.NewStamina(c.skillOpts...)},
		{name: SkillRhythmComplexity, skill: skills.NewRhythmComplexity()},
	}
}

// Calculate rates seq. The only error paths are a nil sequence and a
// context cancelled before or between skill passes.
func (c *Calculator) Calculate(ctx context.Context, seq *object.Sequence, mods object.Mods) (Attributes, error) {
	if seq == nil {
		return Attributes{}, ErrNilSequence
	}
	if err := ctx.Err(); err != nil {
		return Attributes{}, err
	}

	start := time.Now()
	passes := c.passes(mods)

	if c.parallel {
		var wg sync.WaitGroup
		for _, p := range passes {
			wg.Add(1)
			go func(p *pass) {
				defer wg.Done()
				run(seq, p)
			}(p)
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return Attributes{}, err
		}
	} else {
		for _, p := range passes {
			if err := ctx.Err(); err != nil {
				return Attributes{}, err
			}
			run(seq, p)
		}
	}

	attrs := Attributes{ObjectCount: seq.Len(), Mods: mods}
	attrs.Circles, attrs.Sliders, attrs.Spinners = seq.Counts()
	if c.keepPeaks {
		attrs.Peaks = make(map[string][]float64, len(passes))
	}

	for _, p := range passes {
		attrs.set(p.name, p.value)
		if pk, ok := p.skill.(peaker); ok && c.keepPeaks {
			attrs.Peaks[p.name] = pk.Peaks()
		}
		c.recordSkill(p)
		c.log.Debug(ctx, "skill rated",
			logger.String("skill", p.name),
			logger.Float64("value", p.value),
			logger.Duration("took", p.took),
		)
	}

	c.recordCalculation(time.Since(start), seq.Len())
	return attrs, nil
}

func run(seq *object.Sequence, p *pass) {
	start := time.Now()
	seq.Each(p.skill.Process)
	p.value = p.skill.DifficultyValue()
	p.took = time.Since(start)
}

func (c *Calculator) recordSkill(p *pass) {
	ms := float64(p.took.Microseconds()) / 1000
	if c.metrics != nil {
		c.metrics.RecordSkill(p.name, ms, p.value)
		return
	}
	metrics.RecordSkill(p.name, ms, p.value)
}

func (c *Calculator) recordCalculation(took time.Duration, objects int) {
	ms := float64(took.Microseconds()) / 1000
	if c.metrics != nil {
		c.metrics.RecordCalculation(ms, objects)
		return
	}
	metrics.RecordCalculation(ms, objects)
}

// Rate is a convenience wrapper validating raw objects before rating.
func Rate(ctx context.Context, r Rater, objs []object.Object, mods object.Mods) (Attributes, error) {
	if err := object.Validate(objs); err != nil {
		return Attributes{}, fmt.Errorf("rate: %w", err)
	}
	return r.Calculate(ctx, object.NewSequence(objs), mods)
}
