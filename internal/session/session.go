// Package session holds the interaction log of one user session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Speaker string

const (
	User      Speaker = "User"
	UserAudio Speaker = "User(Audio)"
	UserVoice Speaker = "User(Voice)"
	Assistant Speaker = "Assistant"
)

// IsUser reports whether the entry came from the user, whatever the input.
func (s Speaker) IsUser() bool { return s != Assistant }

type Entry struct {
	Speaker Speaker   `json:"speaker"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DefaultDisplayCap is how many trailing entries renderers show.
const DefaultDisplayCap = 50

// Session is an append-only log. It grows without bound; callers render a
// tail of it.
type Session struct {
	ID      string
	Started time.Time

	now func() time.Time

	mu      sync.Mutex
	entries []Entry
}

func New() *Session {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: now(),
		now:     now,
	}
}

func (s *Session) Append(who Speaker, msg string) Entry {
	e := Entry{Speaker: who, Message: msg, At: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e
}

// Exchange appends the user's message and the reply as one unit, so the two
// stay adjacent even when submissions race.
func (s *Session) Exchange(who Speaker, msg, reply string) {
	at := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries,
		Entry{Speaker: who, Message: msg, At: at},
		Entry{Speaker: Assistant, Message: reply, At: at},
	)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Tail returns a copy of the last n entries in append order. n <= 0 returns
// everything.
func (s *Session) Tail(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if n > 0 && len(s.entries) > n {
		start = len(s.entries) - n
	}
	out := make([]Entry, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}
