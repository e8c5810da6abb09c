package chart

import (
	"math"

	"github.com/spf13/cast"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// defaultTicks is the tick count hint used for nicing and tick generation.
const defaultTicks = 10

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear builds a linear scale.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Map projects v into the range. A degenerate domain maps to the range midpoint.
func (s Linear) Map(v float64) float64 {
	span := s.D1 - s.D0
	if span == 0 {
		return s.R0 + (s.R1-s.R0)/2
	}
	return s.R0 + (v-s.D0)/span*(s.R1-s.R0)
}

// Nice extends the domain so both ends fall on round tick values.
func (s Linear) Nice(count int) Linear {
	start, stop := s.D0, s.D1
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}
	if start == stop || math.IsNaN(start) || math.IsNaN(stop) {
		return s
	}

	var prestep float64
	havePrestep := false
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if havePrestep && step == prestep {
			if reversed {
				start, stop = stop, start
			}
			return Linear{D0: start, D1: stop, R0: s.R0, R1: s.R1}
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return s
		}
		prestep, havePrestep = step, true
	}
	return s
}

// Ticks returns round values spanning the domain together with the tick step.
func (s Linear) Ticks(count int) ([]float64, float64) {
	return ticks(s.D0, s.D1, count)
}

func tickSpec(start, stop float64, count int) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && count == 1 {
		return tickSpec(start, stop, 2)
	}
	return i1, i2, inc
}

// tickIncrement is the signed tick step: positive steps are multiples,
// negative steps are reciprocals (-10 means 0.1).
func tickIncrement(start, stop float64, count int) float64 {
	_, _, inc := tickSpec(start, stop, count)
	return inc
}

func ticks(start, stop float64, count int) ([]float64, float64) {
	if count <= 0 {
		return nil, 0
	}
	if start == stop {
		return []float64{start}, 0
	}
	reversed := stop < start
	lo, hi := start, stop
	if reversed {
		lo, hi = stop, start
	}
	i1, i2, inc := tickSpec(lo, hi, count)
	if !(i2 >= i1) {
		return nil, 0
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		k := i1 + float64(i)
		if reversed {
			k = i2 - float64(i)
		}
		if inc < 0 {
			out[i] = k / -inc
		} else {
			out[i] = k * inc
		}
	}
	step := inc
	if inc < 0 {
		step = 1 / -inc
	}
	return out, step
}

// Band divides a continuous range into uniform bands, one per distinct
// domain value. A point scale is a band scale with zero bandwidth.
type Band struct {
	domain    []string
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBand builds a band scale with equal inner and outer padding, centred.
func NewBand(domain []string, r0, r1, padding float64) Band {
	return newBand(domain, r0, r1, padding, padding)
}

// NewPoint builds a point scale: bands collapse to points, no outer padding.
func NewPoint(domain []string, r0, r1 float64) Band {
	return newBand(domain, r0, r1, 1, 0)
}

func newBand(domain []string, r0, r1, inner, outer float64) Band {
	b := Band{index: make(map[string]int, len(domain))}
	for _, d := range domain {
		if _, ok := b.index[d]; ok {
			continue
		}
		b.index[d] = len(b.domain)
		b.domain = append(b.domain, d)
	}
	n := float64(len(b.domain))
	b.step = (r1 - r0) / math.Max(1, n-inner+outer*2)
	b.start = r0 + (r1-r0-b.step*(n-inner))*0.5
	b.bandwidth = b.step * (1 - inner)
	return b
}

// Map returns the start of the band for key.
func (b Band) Map(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Bandwidth is the width of each band (zero for point scales).
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Domain returns the distinct keys in first-seen order.
func (b Band) Domain() []string { return b.domain }

// number coerces a record field to a float. Missing, null and non-numeric
// values report false.
func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// label coerces a record field to its display string.
func label(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}

// maxOf returns the largest numeric value of key across data, or 0 if none.
func maxOf(data []Record, key string) float64 {
	best, seen := 0.0, false
	for _, r := range data {
		if f, ok := number(r[key]); ok && (!seen || f > best) {
			best, seen = f, true
		}
	}
	return best
}

// keysOf lists the display strings of key across data in data order.
func keysOf(data []Record, key string) []string {
	out := make([]string, len(data))
	for i, r := range data {
		out[i] = label(r[key])
	}
	return out
}
