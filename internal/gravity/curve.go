package gravity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrCurveEmpty      = errors.New("gravity curve has no keys")
	ErrCurveKeyRange   = errors.New("gravity curve key time outside [0, 1]")
	ErrCurveKeyOrder   = errors.New("gravity curve key times must be strictly ascending")
	ErrCurveScaleValue = errors.New("gravity curve scale must be positive")
)

// Key maps normalised jump progress to a gravity scale.
type Key struct {
	Time  float64 `yaml:"t"`
	Scale float64 `yaml:"scale"`
}

// Curve is a piecewise-linear gravity scale over jump progress [0, 1].
type Curve struct {
	keys []Key
}

func NewCurve(keys []Key) (*Curve, error) {
	if len(keys) == 0 {
		return nil, ErrCurveEmpty
	}
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	for i, k := range sorted {
		if math.IsNaN(k.Time) || k.Time < 0 || k.Time > 1 {
			return nil, fmt.Errorf("%w: key %d t=%v", ErrCurveKeyRange, i, k.Time)
		}
		if math.IsNaN(k.Scale) || math.IsInf(k.Scale, 0) || k.Scale <= 0 {
			return nil, fmt.Errorf("%w: key %d scale=%v", ErrCurveScaleValue, i, k.Scale)
		}
		if i > 0 && k.Time == sorted[i-1].Time {
			return nil, fmt.Errorf("%w: duplicate t=%v", ErrCurveKeyOrder, k.Time)
		}
	}
	return &Curve{keys: sorted}, nil
}

// MustCurve is NewCurve for literal curves known to be valid.
func MustCurve(keys ...Key) *Curve {
	c, err := NewCurve(keys)
	if err != nil {
		panic(err)
	}
	return c
}

// Sample evaluates the curve at progress t, holding the end values outside
// the key range.
func (c *Curve) Sample(t float64) float64 {
	if c == nil || len(c.keys) == 0 {
		return 1
	}
	if math.IsNaN(t) || t <= c.keys[0].Time {
		return c.keys[0].Scale
	}
	last := c.keys[len(c.keys)-1]
	if t >= last.Time {
		return last.Scale
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time >= t })
	a, b := c.keys[i-1], c.keys[i]
	alpha := (t - a.Time) / (b.Time - a.Time)
	return a.Scale + (b.Scale-a.Scale)*alpha
}

// Range returns the smallest and largest scale the curve can produce.
func (c *Curve) Range() (float64, float64) {
	if c == nil || len(c.keys) == 0 {
		return 1, 1
	}
	lo, hi := c.keys[0].Scale, c.keys[0].Scale
	for _, k := range c.keys[1:] {
		lo = math.Min(lo, k.Scale)
		hi = math.Max(hi, k.Scale)
	}
	return lo, hi
}

func (c *Curve) Keys() []Key {
	if c == nil {
		return nil
	}
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}
