package nlu

import (
	"errors"
	"fmt"
	log "log/slog"
	"strings"
)

const DefaultThreshold = 70

type Result struct {
	Intent Intent
	// Param is the normalized text for intents that consume it, empty otherwise.
	Param string
}

// Shortcut is an exact-substring rule checked before fuzzy matching.
type Shortcut struct {
	Intent   Intent
	Keywords []string
	// MaxLen, when positive, restricts the rule to texts shorter than it.
	MaxLen    int
	PassParam bool
}

func (s Shortcut) match(text string) bool {
	if s.MaxLen > 0 && len(text) >= s.MaxLen {
		return false
	}
	for _, kw := range s.Keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Phrases are the examples an intent is fuzzy-matched against.
type Phrases struct {
	Intent  Intent
	Phrases []string
}

type Config struct {
	// Threshold is the minimum partial similarity (0-100) a fuzzy match needs.
	Threshold float64
	// Shortcuts are evaluated in order, first match wins.
	Shortcuts []Shortcut
	// Phrases are scored in order, earlier entries win ties.
	Phrases []Phrases
}

func DefaultShortcuts() []Shortcut {
	return []Shortcut{
		{Intent: HowAreYou, Keywords: []string{"how are you", "how r you", "how are u"}},
		{Intent: Greet, Keywords: []string{"hello", "hi", "hey"}},
		{Intent: Time, Keywords: []string{"time"}, MaxLen: 40},
		{Intent: Date, Keywords: []string{"date"}},
		{Intent: Music, Keywords: []string{"play music", "play song", "music"}},
		{
			Intent:    Calculator,
			Keywords:  []string{"calculator", "calculate", "plus", "minus", "times", "divided", "over"},
			PassParam: true,
		},
	}
}

func DefaultPhrases() []Phrases {
	return []Phrases{
		{Greet, []string{"hello", "hi", "hey", "hey there", "good morning", "good evening"}},
		{HowAreYou, []string{"how are you", "how r you", "how ru", "how's it going", "how are things"}},
		{Time, []string{"what time is it", "time", "current time", "tell me the time"}},
		{Date, []string{"what is the date", "today's date", "date"}},
		{Calculator, []string{"calculate", "what is", "compute", "evaluate", "plus", "minus", "times", "divided"}},
		{Music, []string{"play music", "play song", "music", "play some music"}},
		{Stop, []string{"stop", "exit", "quit", "goodbye", "bye"}},
	}
}

func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Shortcuts: DefaultShortcuts(),
		Phrases:   DefaultPhrases(),
	}
}

type Classifier struct {
	cfg Config
}

func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return nil, fmt.Errorf("threshold %v out of range [0, 100]", cfg.Threshold)
	}
	for i, s := range cfg.Shortcuts {
		if s.Intent < 0 || s.Intent >= intentCount {
			return nil, fmt.Errorf("shortcut %d: invalid intent %d", i, int(s.Intent))
		}
		if len(s.Keywords) == 0 {
			return nil, fmt.Errorf("shortcut %d (%s): no keywords", i, s.Intent)
		}
	}
	for _, p := range cfg.Phrases {
		if p.Intent < 0 || p.Intent >= intentCount {
			return nil, fmt.Errorf("phrases: invalid intent %d", int(p.Intent))
		}
		if p.Intent == Unknown {
			return nil, errors.New("phrases: unknown is the fallback and takes no phrases")
		}
	}
	return &Classifier{cfg: cfg}, nil
}

func (c *Classifier) Threshold() float64 { return c.cfg.Threshold }

// Classify maps raw text to an intent. It depends on nothing but the text
// and the classifier configuration.
func (c *Classifier) Classify(text string) Result {
	cmd := Normalize(text)
	if cmd == "" {
		return Result{Intent: Unknown}
	}

	for _, s := range c.cfg.Shortcuts {
		if !s.match(cmd) {
			continue
		}
		log.Debug("Shortcut matched", "intent", s.Intent, "text", cmd)
		res := Result{Intent: s.Intent}
		if s.PassParam {
			res.Param = cmd
		}
		return res
	}

	best, score := c.bestMatch(cmd)
	if score >= c.cfg.Threshold {
		log.Debug("Fuzzy matched", "intent", best, "score", score, "text", cmd)
		return Result{Intent: best, Param: cmd}
	}

	log.Debug("No intent", "best", best, "score", score, "text", cmd)
	return Result{Intent: Unknown, Param: cmd}
}

func (c *Classifier) bestMatch(cmd string) (Intent, float64) {
	best, bestScore := Unknown, 0.0
	for _, p := range c.cfg.Phrases {
		for _, phr := range p.Phrases {
			if score := PartialRatio(phr, cmd); score > bestScore {
				best, bestScore = p.Intent, score
			}
		}
	}
	return best, bestScore
}
