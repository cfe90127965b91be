package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AppendOrder(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return at })

	require.NotEmpty(t, s.ID)
	assert.Equal(t, at, s.Started)

	s.Append(User, "hello")
	s.Append(Assistant, "Hello! How can I help you?")
	s.Exchange(UserAudio, "what time is it", "It is 12:00 PM")

	got := s.Tail(0)
	require.Len(t, got, 4)
	assert.Equal(t, []Speaker{User, Assistant, UserAudio, Assistant},
		[]Speaker{got[0].Speaker, got[1].Speaker, got[2].Speaker, got[3].Speaker})
	assert.Equal(t, "what time is it", got[2].Message)
	assert.Equal(t, at, got[3].At)
}

func TestSession_TailCap(t *testing.T) {
	s := New()
	for i := 0; i < 120; i++ {
		s.Append(User, fmt.Sprint(i))
	}

	assert.Equal(t, 120, s.Len())

	tail := s.Tail(DefaultDisplayCap)
	require.Len(t, tail, DefaultDisplayCap)
	assert.Equal(t, "70", tail[0].Message)
	assert.Equal(t, "119", tail[len(tail)-1].Message)

	assert.Len(t, s.Tail(500), 120)
	assert.Len(t, s.Tail(-1), 120)
}

func TestSession_TailIsCopy(t *testing.T) {
	s := New()
	s.Append(User, "hello")

	tail := s.Tail(1)
	tail[0].Message = "changed"

	assert.Equal(t, "hello", s.Tail(1)[0].Message)
}

func TestSession_ConcurrentExchangesStayPaired(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Exchange(User, fmt.Sprint("q", i), fmt.Sprint("a", i))
		}(i)
	}
	wg.Wait()

	entries := s.Tail(0)
	require.Len(t, entries, 100)
	for i := 0; i < len(entries); i += 2 {
		assert.True(t, entries[i].Speaker.IsUser())
		assert.Equal(t, Assistant, entries[i+1].Speaker)
		assert.Equal(t, "a"+entries[i].Message[1:], entries[i+1].Message)
	}
}

func TestSpeakerIsUser(t *testing.T) {
	assert.True(t, User.IsUser())
	assert.True(t, UserAudio.IsUser())
	assert.True(t, UserVoice.IsUser())
	assert.False(t, Assistant.IsUser())
}
