package nlu

import "strings"

const (
	DefaultWakePhrase    = "hey assistant"
	DefaultWakeThreshold = 75
)

// Wake detects a wake phrase at the start of a voice transcript.
type Wake struct {
	Phrase    string
	Threshold float64
}

func (w Wake) Enabled() bool { return strings.TrimSpace(w.Phrase) != "" }

func (w Wake) Detect(transcript string) bool {
	if !w.Enabled() {
		return true
	}
	return PartialRatio(Normalize(w.Phrase), Normalize(transcript)) >= w.Threshold
}

// Strip removes the wake phrase and everything before it. When the phrase
// was only heard approximately, as many leading words as the phrase has are
// dropped.
func (w Wake) Strip(transcript string) string {
	text := Normalize(transcript)
	phrase := Normalize(w.Phrase)
	if phrase == "" {
		return text
	}
	if i := strings.Index(text, phrase); i >= 0 {
		return strings.TrimSpace(text[i+len(phrase):])
	}
	words := strings.Fields(text)
	n := len(strings.Fields(phrase))
	if n >= len(words) {
		return ""
	}
	return strings.Join(words[n:], " ")
}
