package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"hello", "hello world", 100},
		{"hello world", "hello", 100},
		{"time", "what time is it", 100},
		{"tme", "time", 80},
		{"ab", "ba", 200.0 / 3},
		{"abc", "xyz", 0},
		{"", "anything", 0},
		{"anything", "", 0},
		{"good morning", "good moring", 1000.0 / 11},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, PartialRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestPartialRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"tme", "time"},
		{"hey assistant", "hay assistant what time is it"},
		{"quit", "xyz qqq"},
	}
	for _, p := range pairs {
		assert.Equal(t, PartialRatio(p[0], p[1]), PartialRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestPartialRatioBounds(t *testing.T) {
	words := []string{"a", "hi", "stop", "what is the date", "zzzz", "play some music"}
	for _, a := range words {
		for _, b := range words {
			r := PartialRatio(a, b)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 100.0)
		}
	}
}
