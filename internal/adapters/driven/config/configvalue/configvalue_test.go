package configvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==== Conversion Tests ====

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 5, 5},
		{"toml integer", int64(500), 500},
		{"json whole number", 100.0, 100},
		{"fraction rejected", 0.5, 0},
		{"infinity rejected", math.Inf(1), 0},
		{"string rejected", "5", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in))
		})
	}
}

func TestFloat(t *testing.T) {
	assert.InDelta(t, 0.2, Float(0.2), 1e-9)
	assert.InDelta(t, 1.0, Float(int64(1)), 1e-9)
	assert.InDelta(t, 3.0, Float(3), 1e-9)
	assert.Zero(t, Float("0.2"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "ollama", String("ollama"))
	assert.Equal(t, "", String(5))
	assert.Equal(t, "", String(nil))
}

func TestRemoves(t *testing.T) {
	assert.True(t, Removes(nil))
	assert.True(t, Removes(""))
	assert.False(t, Removes(0))
	assert.False(t, Removes("x"))
}
