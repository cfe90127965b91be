package nlu

import (
	"fmt"
	log "log/slog"
	"time"

	"assistant/internal/calc"
)

const (
	GreetReply     = "Hello! How can I help you?"
	HowAreYouReply = "I'm an offline assistant, running great! How can I help you?"
	MusicReply     = "Playing music (demo)."
	StopReply      = "Goodbye!"
	CalcUsage      = "Calculator mode: say something like 'calculate 5 plus 3' or type an expression."
	CalcError      = "Sorry, I couldn't parse that expression. Try a simpler expression like '12 + 5'."
	UnknownReply   = "Sorry, I didn't understand that. (Try: 'What time is it?' or 'How are you?')"
	FailureReply   = "Sorry, something went wrong handling that."
)

type handler func(param string) (string, error)

// Dispatcher turns a classified intent into the user-facing reply.
type Dispatcher struct {
	now      func() time.Time
	handlers [intentCount]handler
}

// NewDispatcher builds the handler table. now may be nil for the wall clock.
func NewDispatcher(now func() time.Time) (*Dispatcher, error) {
	if now == nil {
		now = time.Now
	}
	d := &Dispatcher{now: now}
	d.handlers = [intentCount]handler{
		Greet:      fixed(GreetReply),
		HowAreYou:  fixed(HowAreYouReply),
		Time:       d.tellTime,
		Date:       d.tellDate,
		Calculator: calculate,
		Music:      fixed(MusicReply),
		Stop:       fixed(StopReply),
		Unknown:    fixed(UnknownReply),
	}
	for i, h := range d.handlers {
		if h == nil {
			return nil, fmt.Errorf("no handler for intent %s", Intent(i))
		}
	}
	return d, nil
}

// Dispatch never fails: errors and panics in handlers become apologies.
func (d *Dispatcher) Dispatch(intent Intent, param string) (reply string) {
	if intent < 0 || intent >= intentCount {
		intent = Unknown
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panicked", "intent", intent, "panic", r)
			reply = FailureReply
		}
	}()

	out, err := d.handlers[intent](param)
	if err != nil {
		log.Warn("Handler failed", "intent", intent, "param", param, "err", err)
		if intent == Calculator {
			return CalcError
		}
		return FailureReply
	}
	return out
}

func fixed(s string) handler {
	return func(string) (string, error) { return s, nil }
}

func (d *Dispatcher) tellTime(string) (string, error) {
	return "It is " + d.now().Format("03:04 PM"), nil
}

func (d *Dispatcher) tellDate(string) (string, error) {
	return "Today is " + d.now().Format("Monday, January 02, 2006"), nil
}

func calculate(param string) (string, error) {
	if param == "" {
		return CalcUsage, nil
	}
	v, err := calc.Evaluate(param)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", param, err)
	}
	return "The result is " + calc.Format(v), nil
}
