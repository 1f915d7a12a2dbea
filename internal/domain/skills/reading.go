package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// Reading constants.
const (
	readingWindowCapacity = 10

	readingFlowDiscount = 0.6
	readingOverlapFloor = 0.5

	hiddenBase         = 1.05
	hiddenDensityScale = 1.5

	flashlightBonus       = 0.3
	flashlightSightline   = 150.0
	flashlightFullBonusAt = 300.0

	highApproachBonus     = 0.067
	highApproachThreshold = 325.0
	highApproachFullAt    = 225.0
)

// readingWindow is a fixed-capacity ring of recently seen objects, oldest at
// the front. Capacity is only a safety cap: objects normally leave through
// time-based eviction from the front.
type readingWindow struct {
	buf   [readingWindowCapacity]*object.Object
	front int
	count int
}

// PushBack adds o as the newest entry, dropping the oldest when full.
func (w *readingWindow) PushBack(o *object.Object) {
	if w.count == len(w.buf) {
		w.PopFront()
	}
	w.buf[(w.front+w.count)%len(w.buf)] = o
	w.count++
}

// Front returns the oldest entry or nil.
func (w *readingWindow) Front() *object.Object {
	if w.count == 0 {
		return nil
	}
	return w.buf[w.front]
}

// PopFront removes the oldest entry.
func (w *readingWindow) PopFront() {
	if w.count == 0 {
		return
	}
	w.buf[w.front] = nil
	w.front = (w.front + 1) % len(w.buf)
	w.count--
}

// Len returns the number of retained objects.
func (w *readingWindow) Len() int { return w.count }

// Each visits entries from oldest to newest.
func (w *readingWindow) Each(fn func(o *object.Object)) {
	for i := 0; i < w.count; i++ {
		fn(w.buf[(w.front+i)%len(w.buf)])
	}
}

// readingDensity is how much one visible object adds to the reading load.
// Stream notes read as a group and near-stacked notes overlap, so both
// count for less.
func readingDensity(baseFlow, jumpDistance float64) float64 {
	overlap := readingOverlapFloor + (1-readingOverlapFloor)*Transition(jumpDistance, 0, 2*NormalisedRadius)
	return (1 - readingFlowDiscount*baseFlow) * overlap
}

// reader owns the reading window of one Aim instance.
type reader struct {
	mods   object.Mods
	window readingWindow
}

// multiplier evicts expired objects, scores the visible ones, then records
// current for the objects that follow.
func (r *reader) multiplier(current *object.Object) float64 {
	horizon := current.StartTime - current.Preempt
	for oldest := r.window.Front(); oldest != nil && oldest.StartTime < horizon; oldest = r.window.Front() {
		r.window.PopFront()
	}

	density := 0.0
	r.window.Each(func(o *object.Object) {
		density += readingDensity(o.BaseFlow, o.JumpDistance)
	})
	densityBonus := math.Pow(density, 1.5) / 100

	m := 1 + densityBonus
	if r.mods.Has(object.ModHidden) {
		m = hiddenBase + densityBonus*hiddenDensityScale
	}
	if r.mods.Has(object.ModFlashlight) {
		m *= FlashlightMultiplier(current.RawJumpDistance)
	}
	m *= HighApproachMultiplier(current.Preempt)

	r.window.PushBack(current)
	return m
}

// FlashlightMultiplier rewards jumps longer than the flashlight sightline,
// up to +30%.
func FlashlightMultiplier(rawJumpDistance float64) float64 {
	return 1 + flashlightBonus*Transition(rawJumpDistance, flashlightSightline, flashlightFullBonusAt)
}

// HighApproachMultiplier grows once preempt drops below 325 ms.
func HighApproachMultiplier(preempt float64) float64 {
	return 1 + highApproachBonus*Transition(preempt, highApproachThreshold, highApproachFullAt)
}
