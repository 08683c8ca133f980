package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentagesSet_SumsTo100ForEveryEdit(t *testing.T) {
	for k := 0; k <= 100; k += 5 {
		for o := 0; k+o <= 100; o += 5 {
			p := Percentages{Kolay: k, Orta: o, Zor: 100 - k - o}
			for _, a := range []Axis{Kolay, Orta, Zor} {
				for v := 0; v <= 100; v++ {
					got := p.Set(a, v)
					require.Equal(t, 100, got.Sum(), "start=%v axis=%s v=%d got=%v", p, a, v, got)
					require.Equal(t, v, got[a])
					for _, x := range got {
						require.GreaterOrEqual(t, x, 0)
					}
				}
			}
		}
	}
}

func TestPercentagesSet_Proportional(t *testing.T) {
	p := Percentages{Kolay: 30, Orta: 50, Zor: 20}

	got := p.Set(Kolay, 60)
	// orta:zor was 50:20, remainder 40
	assert.Equal(t, Percentages{Kolay: 60, Orta: 29, Zor: 11}, got)

	got = p.Set(Zor, 0)
	// kolay:orta was 30:50, remainder 100
	assert.Equal(t, Percentages{Kolay: 38, Orta: 62, Zor: 0}, got)
}

func TestPercentagesSet_FallbackWhenOthersZero(t *testing.T) {
	tests := []struct {
		name  string
		start Percentages
		axis  Axis
		v     int
		want  Percentages
	}{
		{"edit kolay", Percentages{Kolay: 100}, Kolay, 50, Percentages{Kolay: 50, Orta: 35, Zor: 15}},
		{"edit orta", Percentages{Orta: 100}, Orta, 0, Percentages{Kolay: 60, Orta: 0, Zor: 40}},
		{"edit zor", Percentages{Zor: 100}, Zor, 50, Percentages{Kolay: 20, Orta: 30, Zor: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.Set(tt.axis, tt.v))
		})
	}
}

func TestPercentagesSet_ClampsValue(t *testing.T) {
	p := DefaultPercentages

	got := p.Set(Orta, 140)
	assert.Equal(t, Percentages{Kolay: 0, Orta: 100, Zor: 0}, got)

	got = p.Set(Orta, -5)
	assert.Equal(t, 0, got[Orta])
	assert.Equal(t, 100, got.Sum())
}

func TestPercentagesSet_UnknownAxisIsNoop(t *testing.T) {
	p := DefaultPercentages
	assert.Equal(t, p, p.Set(Axis(7), 10))
}

func TestPercentagesDistributionRoundTrip(t *testing.T) {
	d := DefaultPercentages.Distribution()
	assert.InDelta(t, 0.3, d.Kolay, 1e-9)
	assert.InDelta(t, 0.5, d.Orta, 1e-9)
	assert.InDelta(t, 0.2, d.Zor, 1e-9)

	assert.Equal(t, DefaultPercentages, PercentagesOf(d))
	assert.Equal(t, DefaultPercentages, PercentagesOf(DifficultyDistribution{}))
	assert.Equal(t, 100, PercentagesOf(DifficultyDistribution{Kolay: 0.333, Orta: 0.333, Zor: 0.334}).Sum())
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("orta")
	require.NoError(t, err)
	assert.Equal(t, Orta, a)
	assert.Equal(t, "orta", a.String())

	_, err = ParseAxis("medium")
	require.Error(t, err)
}
