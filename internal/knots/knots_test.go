package knots

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New([]float64{0})
	assert.Error(t, err)

	_, err = New([]float64{0, 1, 1, 2})
	assert.Error(t, err, "repeated breakpoints are rejected")

	_, err = New([]float64{0, 2, 1})
	assert.Error(t, err)

	v, err := New([]float64{0, 0.5, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 2, v.Intervals())
}

func TestUniform(t *testing.T) {
	v, err := Uniform(0, 1, 4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, v.Breaks(), 1e-15)

	_, err = Uniform(0, 1, 0)
	assert.Error(t, err)

	_, err = Uniform(1, 1, 3)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	v, err := Uniform(0, 1, 4)
	require.NoError(t, err)

	tests := []struct {
		name string
		u    float64
		want int
	}{
		{"first breakpoint", 0, 0},
		{"inside first", 0.1, 0},
		{"interior breakpoint opens next interval", 0.25, 1},
		{"inside third", 0.6, 2},
		{"last breakpoint belongs to last interval", 1, 3},
		{"below range clamps", -3, 0},
		{"above range clamps", 7, 3},
		{"nan stays in grid", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Find(tt.u))
		})
	}
}

func TestBreaksIsCopy(t *testing.T) {
	v, err := New([]float64{0, 1, 2})
	require.NoError(t, err)

	b := v.Breaks()
	b[0] = 42
	assert.Equal(t, 0.0, v.Breaks()[0])
}
