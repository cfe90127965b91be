package nlu

import "fmt"

// Intent is the classified purpose of an utterance.
type Intent int

const (
	Greet Intent = iota
	HowAreYou
	Time
	Date
	Calculator
	Music
	Stop
	Unknown

	intentCount
)

var intentNames = [intentCount]string{
	Greet:      "greet",
	HowAreYou:  "how_are_you",
	Time:       "time",
	Date:       "date",
	Calculator: "calculator",
	Music:      "music",
	Stop:       "stop",
	Unknown:    "unknown",
}

func (i Intent) String() string {
	if i < 0 || i >= intentCount {
		return fmt.Sprintf("intent(%d)", int(i))
	}
	return intentNames[i]
}

// Intents returns every intent in declaration order.
func Intents() []Intent {
	out := make([]Intent, 0, intentCount)
	for i := Intent(0); i < intentCount; i++ {
		out = append(out, i)
	}
	return out
}

func ParseIntent(s string) (Intent, error) {
	for i, name := range intentNames {
		if name == s {
			return Intent(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown intent %q", s)
}
