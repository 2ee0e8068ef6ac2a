package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

func TestValue_Formula(t *testing.T) {
	tests := []struct {
		emotion    string
		confidence float64
		want       float64
	}{
		{"joy", 100, 9},
		{"joy", 50, 4.5},
		{"love", 100, 8},
		{"surprise", 50, 3},
		{"neutral", 100, 5},
		{"fear", 100, 3},
		{"sadness", 50, 1},
		{"anger", 100, 2},
		{"contempt", 100, 5},
		{"JOY ", 100, 9},
		{"joy", 0, 0},
		{"joy", 200, 18},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Value(tc.emotion, tc.confidence), "Value(%q, %v)", tc.emotion, tc.confidence)
	}
}

func TestValue_MonotonicInConfidence(t *testing.T) {
	for _, e := range journal.Emotions {
		prev := Value(e, 0)
		for c := 10.0; c <= 100; c += 10 {
			v := Value(e, c)
			assert.Greater(t, v, prev, "Value(%q, %v)", e, c)
			prev = v
		}
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("Sadness"))
	assert.False(t, Known("boredom"))
	assert.InDelta(t, float64(UnknownBase), Base("boredom"), 0)
}
