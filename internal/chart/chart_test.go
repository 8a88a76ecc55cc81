package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColors_SlicesPalette(t *testing.T) {
	assert.Equal(t, Palette[:3], Colors(3))
	assert.Empty(t, Colors(0))
}

func TestColors_CyclesWhenExhausted(t *testing.T) {
	n := len(Palette) + 2
	colors := Colors(n)

	assert.Len(t, colors, n)
	assert.Equal(t, Palette[0], colors[len(Palette)])
	assert.Equal(t, Palette[1], colors[len(Palette)+1])
}

func TestNew_ParallelArrays(t *testing.T) {
	d := New([]string{"Food", "Venue"}, []float64{150, 200})

	assert.Equal(t, []string{"Food", "Venue"}, d.Labels)
	assert.Equal(t, []float64{150, 200}, d.Values)
	assert.Len(t, d.Colors, 2)
}

func TestNew_PanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() { New([]string{"a"}, nil) })
}
