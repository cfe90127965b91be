package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWake(t *testing.T) {
	w := Wake{Phrase: DefaultWakePhrase, Threshold: DefaultWakeThreshold}

	tests := []struct {
		transcript string
		heard      bool
		stripped   string
	}{
		{"Hey assistant, what time is it?", true, "what time is it"},
		{"hay assistant what time is it", true, "what time is it"},
		{"what time is it", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.heard, w.Detect(tt.transcript))
			if tt.heard {
				assert.Equal(t, tt.stripped, w.Strip(tt.transcript))
			}
		})
	}
}

func TestWakeDisabled(t *testing.T) {
	var w Wake
	assert.False(t, w.Enabled())
	assert.True(t, w.Detect("anything at all"))
	assert.Equal(t, "anything at all", w.Strip("Anything at all!"))
}
