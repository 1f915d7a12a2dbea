package testcharts

// Default generation settings.
const (
	defaultCharts          = 8
	defaultObjectsPerChart = 400
	defaultWorkers         = 4
	defaultCircleSize      = 4
	defaultApproachRate    = 9
)

// Playfield and timing limits in osu!pixels and milliseconds.
const (
	playfieldWidth  = 512.0
	playfieldHeight = 384.0
	minStrainTime   = 50.0
	minGapTime      = 1.0
	leadIn          = 1000.0
)

// Section shapes: object count range, interval range (ms) and spacing
// range (osu!pixels).
const (
	sectionMin = 8
	sectionMax = 32

	jumpIntervalMin = 150.0
	jumpIntervalMax = 260.0
	jumpSpacingMin  = 140.0
	jumpSpacingMax  = 320.0

	streamIntervalMin = 85.0
	streamIntervalMax = 130.0
	streamSpacingMin  = 15.0
	streamSpacingMax  = 60.0

	sliderDurationMin  = 150.0
	sliderDurationMax  = 500.0
	spinnerDurationMin = 1000.0
	spinnerDurationMax = 3000.0
)

// Section kinds, chosen with weights jump 4, stream 3, slider 2, spinner 1.
const (
	sectionJump = iota
	sectionStream
	sectionSlider
	sectionSpinner
)

var sectionWeights = []int{4, 3, 2, 1}
