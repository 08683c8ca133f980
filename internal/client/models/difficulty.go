package models

import (
	"fmt"
	"math"
)

// Axis names one difficulty level of an exam.
type Axis int

const (
	Kolay Axis = iota
	Orta
	Zor
)

func (a Axis) String() string {
	switch a {
	case Kolay:
		return "kolay"
	case Orta:
		return "orta"
	case Zor:
		return "zor"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis maps a level name to its Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "kolay":
		return Kolay, nil
	case "orta":
		return Orta, nil
	case "zor":
		return Zor, nil
	}
	return 0, fmt.Errorf("unknown difficulty axis %q", s)
}

// fallbackShare is the share of the remainder given to the first of the two
// untouched axes (in kolay, orta, zor order) when both of them are at zero.
var fallbackShare = [3]float64{
	Kolay: 0.7, // orta 0.7, zor 0.3
	Orta:  0.6, // kolay 0.6, zor 0.4
	Zor:   0.4, // kolay 0.4, orta 0.6
}

// Percentages is the integer-percent form of a difficulty distribution as
// edited through sliders. The three values always sum to 100.
type Percentages [3]int

// DefaultPercentages matches DefaultDistribution.
var DefaultPercentages = Percentages{Kolay: 30, Orta: 50, Zor: 20}

// Sum returns the total of the three values.
func (p Percentages) Sum() int {
	return p[Kolay] + p[Orta] + p[Zor]
}

// others returns the two axes other than a, in kolay, orta, zor order.
func others(a Axis) (Axis, Axis) {
	switch a {
	case Kolay:
		return Orta, Zor
	case Orta:
		return Kolay, Zor
	default:
		return Kolay, Orta
	}
}

// Set returns p with axis a set to v (clamped to [0,100]) and the remaining
// 100-v split across the other two axes in proportion to their previous
// values. When both other axes are zero the fixed per-axis fallback share is
// used instead of an even split.
func (p Percentages) Set(a Axis, v int) Percentages {
	if a < Kolay || a > Zor {
		return p
	}
	v = max(0, min(100, v))
	rest := 100 - v

	b, c := others(a)
	var share float64
	if p[b]+p[c] > 0 {
		share = float64(p[b]) / float64(p[b]+p[c])
	} else {
		share = fallbackShare[a]
	}

	first := int(math.Round(float64(rest) * share))

	var out Percentages
	out[a] = v
	out[b] = first
	out[c] = rest - first
	return out
}

// Distribution converts p to proportions.
func (p Percentages) Distribution() DifficultyDistribution {
	return DifficultyDistribution{
		Kolay: float64(p[Kolay]) / 100,
		Orta:  float64(p[Orta]) / 100,
		Zor:   float64(p[Zor]) / 100,
	}
}

// PercentagesOf converts a distribution to integer percentages. Zor absorbs
// the rounding so the result sums to 100.
func PercentagesOf(d DifficultyDistribution) Percentages {
	if d.IsZero() {
		return DefaultPercentages
	}
	k := int(math.Round(d.Kolay * 100))
	o := int(math.Round(d.Orta * 100))
	k = max(0, min(100, k))
	o = max(0, min(100-k, o))
	return Percentages{Kolay: k, Orta: o, Zor: 100 - k - o}
}
