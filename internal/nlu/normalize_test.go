package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello", "hello"},
		{"  Hello,   WORLD!! 5*3 = 15?  ", "hello world 5*3 15"},
		{"What's the date?", "what s the date"},
		{"12.5 / (3 - 1)", "12.5 / 3 - 1"},
		{"tab\tand\nnewline", "tab and newline"},
		{"Ça va?", "a va"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, there!",
		"  what   TIME is it?? ",
		"5 plus 3 = ?",
		"-- ** // ..",
		"hey!\tassistant…",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
