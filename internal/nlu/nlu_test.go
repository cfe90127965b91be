package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, cfg Config) *Classifier {
	t.Helper()
	c, err := NewClassifier(cfg)
	require.NoError(t, err)
	return c
}

func TestClassify_Shortcuts(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	tests := []struct {
		input  string
		intent Intent
		param  string
	}{
		{"hello", Greet, ""},
		{"Hello, there!", Greet, ""},
		{"How are you today?", HowAreYou, ""},
		{"what time is it", Time, ""},
		{"What's the date today?", Date, ""},
		{"play music please", Music, ""},
		{"5 plus 3", Calculator, "5 plus 3"},
		{"ten plus five", Calculator, "ten plus five"},
		{"Calculate 6 over 2", Calculator, "calculate 6 over 2"},
		// "hi" hides in "something": greet outranks time
		{"tell me something about the time", Greet, ""},
		// "time" appears in "times" and is checked before calculator words
		{"2 times 3", Time, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.param, got.Param)
		})
	}
}

func TestClassify_ShortcutIgnoresNoise(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	for _, noise := range []string{"", "uh ", "ok so ", "please, "} {
		got := c.Classify(noise + "hello" + " assistant")
		assert.Equal(t, Greet, got.Intent, "noise %q", noise)

		got = c.Classify(noise + "what time is it")
		assert.Equal(t, Time, got.Intent, "noise %q", noise)
	}
}

func TestClassify_TimeLengthGuard(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	long := "please tell me the current time in london right now"
	require.GreaterOrEqual(t, len(Normalize(long)), 40)

	got := c.Classify(long)
	assert.Equal(t, Time, got.Intent)
	// past the guard the fuzzy path answers, and it passes the text through
	assert.Equal(t, Normalize(long), got.Param)
}

func TestClassify_Fuzzy(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	tests := []struct {
		input  string
		intent Intent
	}{
		{"goodbye for now", Stop},
		{"stop", Stop},
		{"exit", Stop},
		{"good moring", Greet},
		{"wat is the dat", Date},
		{"hows it going", HowAreYou},
		{"compute 4 / 2", Calculator},
		{"play some songs", Music},
		{"tme", Time},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, Normalize(tt.input), got.Param)
		})
	}
}

func TestClassify_BelowThreshold(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	for _, input := range []string{"xyz qqq", "thanks a lot"} {
		got := c.Classify(input)
		assert.Equal(t, Unknown, got.Intent, input)
		assert.Equal(t, input, got.Param)
	}
}

func TestClassify_ThresholdIsConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	// "tme" scores 80 against "time"
	assert.Equal(t, Time, newTestClassifier(t, cfg).Classify("tme").Intent)

	cfg.Threshold = 85
	assert.Equal(t, Unknown, newTestClassifier(t, cfg).Classify("tme").Intent)
}

func TestClassify_PriorityIsConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	var calcFirst []Shortcut
	for _, s := range cfg.Shortcuts {
		if s.Intent == Calculator {
			calcFirst = append([]Shortcut{s}, calcFirst...)
			continue
		}
		calcFirst = append(calcFirst, s)
	}
	cfg.Shortcuts = calcFirst

	got := newTestClassifier(t, cfg).Classify("2 times 3")
	assert.Equal(t, Calculator, got.Intent)
	assert.Equal(t, "2 times 3", got.Param)
}

func TestClassify_TiesGoToFirstIntent(t *testing.T) {
	cfg := Config{
		Threshold: 70,
		Phrases: []Phrases{
			{Music, []string{"banana"}},
			{Stop, []string{"banana"}},
		},
	}
	assert.Equal(t, Music, newTestClassifier(t, cfg).Classify("banana").Intent)

	cfg.Phrases[0], cfg.Phrases[1] = cfg.Phrases[1], cfg.Phrases[0]
	assert.Equal(t, Stop, newTestClassifier(t, cfg).Classify("banana").Intent)
}

func TestClassify_Empty(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	for _, input := range []string{"", "   ", "?!", "¿¡"} {
		assert.Equal(t, Result{Intent: Unknown}, c.Classify(input), "input %q", input)
	}
}

func TestClassify_NeverBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shortcuts = nil
	c := newTestClassifier(t, cfg)

	inputs := []string{"xyz", "qq", "zebra crossing", "lorem ipsum dolor", "tme", "bye", "mmm"}
	for _, in := range inputs {
		got := c.Classify(in)
		if got.Intent == Unknown {
			continue
		}
		_, score := c.bestMatch(Normalize(in))
		assert.GreaterOrEqual(t, score, cfg.Threshold, "input %q classified as %s", in, got.Intent)
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier(Config{Threshold: 120})
	assert.Error(t, err)

	_, err = NewClassifier(Config{Shortcuts: []Shortcut{{Intent: Greet}}})
	assert.Error(t, err)

	_, err = NewClassifier(Config{Phrases: []Phrases{{Unknown, []string{""}}}})
	assert.Error(t, err)

	c, err := NewClassifier(Config{})
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultThreshold), c.Threshold())
}

func TestParseIntent(t *testing.T) {
	for _, i := range Intents() {
		got, err := ParseIntent(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	_, err := ParseIntent("weather")
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(Intent(42).String(), "intent("))
}
