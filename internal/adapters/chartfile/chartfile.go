// Package chartfile reads and writes chart documents: a list of processed
// hit objects plus the settings needed to rate them. Documents are YAML;
// JSON is accepted on input since it is a subset.
package chartfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.yaml.in/yaml/v3"

	"github.com/okian/strain/internal/domain/object"
)

const defaultApproachRate = 5.0

// Chart is a decoded document.
type Chart struct {
	ID      string
	Title   string
	Mods    object.Mods
	Objects []object.Object
}

// document is the on-disk shape.
type document struct {
	ID           string      `yaml:"id,omitempty"`
	Title        string      `yaml:"title,omitempty"`
	Mods         object.Mods `yaml:"mods,omitempty"`
	CircleSize   *float64    `yaml:"circle_size,omitempty"`
	ApproachRate *float64    `yaml:"approach_rate,omitempty"`
	Objects      []objectDoc `yaml:"objects"`
}

type objectDoc struct {
	Kind              string   `yaml:"kind"`
	StartTime         float64  `yaml:"start_time"`
	DeltaTime         float64  `yaml:"delta_time"`
	StrainTime        float64  `yaml:"strain_time"`
	GapTime           float64  `yaml:"gap_time"`
	JumpDistance      float64  `yaml:"jump_distance"`
	RawJumpDistance   float64  `yaml:"raw_jump_distance"`
	Angle             *float64 `yaml:"angle,omitempty"`
	Flow              float64  `yaml:"flow"`
	BaseFlow          float64  `yaml:"base_flow"`
	Preempt           float64  `yaml:"preempt,omitempty"`
	LastTwoStrainTime float64  `yaml:"last_two_strain_time,omitempty"`
	Radius            float64  `yaml:"radius,omitempty"`
	X                 float64  `yaml:"x"`
	Y                 float64  `yaml:"y"`
	StartAngle        float64  `yaml:"start_angle,omitempty"`
	EndAngle          float64  `yaml:"end_angle,omitempty"`
	Duration          float64  `yaml:"duration,omitempty"`
}

// Decode reads one document from r. Objects without a radius or preempt
// take them from the document's circle_size and approach_rate under its
// modifiers; approach_rate defaults to 5. The result is validated.
func Decode(r io.Reader) (*Chart, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyChart
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(doc.Objects) == 0 {
		return nil, ErrEmptyChart
	}

	c := &Chart{ID: doc.ID, Title: doc.Title, Mods: doc.Mods, Objects: make([]object.Object, len(doc.Objects))}

	var radius, preempt float64
	if doc.CircleSize != nil {
		radius = object.CircleRadius(doc.Mods.AdjustCircleSize(*doc.CircleSize))
	}
	ar := defaultApproachRate
	if doc.ApproachRate != nil {
		ar = *doc.ApproachRate
	}
	preempt = doc.Mods.Preempt(ar)

	for i, od := range doc.Objects {
		kind, err := parseKind(od.Kind)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		o := object.Object{
			StartTime:         od.StartTime,
			DeltaTime:         od.DeltaTime,
			StrainTime:        od.StrainTime,
			GapTime:           od.GapTime,
			JumpDistance:      od.JumpDistance,
			RawJumpDistance:   od.RawJumpDistance,
			Angle:             od.Angle,
			Flow:              od.Flow,
			BaseFlow:          od.BaseFlow,
			Preempt:           od.Preempt,
			LastTwoStrainTime: od.LastTwoStrainTime,
			Base: object.BaseObject{
				Kind:       kind,
				Radius:     od.Radius,
				Position:   object.Vector2{X: od.X, Y: od.Y},
				StartAngle: od.StartAngle,
				EndAngle:   od.EndAngle,
				Duration:   od.Duration,
			},
		}
		if o.Base.Radius == 0 {
			o.Base.Radius = radius
		}
		if o.Preempt == 0 {
			o.Preempt = preempt
		}
		c.Objects[i] = o
	}

	if err := object.Validate(c.Objects); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode writes c as YAML.
func Encode(w io.Writer, c *Chart) error {
	doc := document{ID: c.ID, Title: c.Title, Mods: c.Mods, Objects: make([]objectDoc, len(c.Objects))}
	for i, o := range c.Objects {
		doc.Objects[i] = objectDoc{
			Kind:              o.Base.Kind.String(),
			StartTime:         o.StartTime,
			DeltaTime:         o.DeltaTime,
			StrainTime:        o.StrainTime,
			GapTime:           o.GapTime,
			JumpDistance:      o.JumpDistance,
			RawJumpDistance:   o.RawJumpDistance,
			Angle:             o.Angle,
			Flow:              o.Flow,
			BaseFlow:          o.BaseFlow,
			Preempt:           o.Preempt,
			LastTwoStrainTime: o.LastTwoStrainTime,
			Radius:            o.Base.Radius,
			X:                 o.Base.Position.X,
			Y:                 o.Base.Position.Y,
			StartAngle:        o.Base.StartAngle,
			EndAngle:          o.Base.EndAngle,
			Duration:          o.Base.Duration,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return enc.Close()
}

// Load decodes the file at path. A chart without an ID takes the path.
func Load(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chart: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.ID == "" {
		c.ID = path
	}
	return c, nil
}

// Save encodes c to the file at path.
func Save(path string, c *Chart) error {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// Sequence returns the rating arena for c.
func (c *Chart) Sequence() *object.Sequence {
	return object.NewSequence(c.Objects)
}

// Fingerprint hashes the rated content of c (modifiers and objects, not ID
// or title), so resubmitting the same chart under another name is detected.
func (c *Chart) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	put(float64(c.Mods))
	for i := range c.Objects {
		o := &c.Objects[i]
		put(float64(o.Base.Kind))
		put(o.StartTime)
		put(o.DeltaTime)
		put(o.StrainTime)
		put(o.GapTime)
		put(o.JumpDistance)
		put(o.RawJumpDistance)
		if o.Angle != nil {
			put(*o.Angle)
		} else {
			put(math.NaN())
		}
		put(o.Flow)
		put(o.BaseFlow)
		put(o.Preempt)
		put(o.LastTwoStrainTime)
		put(o.Base.Radius)
		put(o.Base.Position.X)
		put(o.Base.Position.Y)
		put(o.Base.StartAngle)
		put(o.Base.EndAngle)
		put(o.Base.Duration)
	}
	return d.Sum64()
}

func parseKind(s string) (object.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle":
		return object.KindCircle, nil
	case "slider":
		return object.KindSlider, nil
	case "spinner":
		return object.KindSpinner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
