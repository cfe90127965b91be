// Package assistant runs one submission end to end: validate, transcribe
// when needed, classify, dispatch, and record the exchange in the session.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"

	"assistant/internal/nlu"
	"assistant/internal/session"
	"assistant/pkg/audioconv"
	"assistant/pkg/stt"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNoSpeech   = errors.New("no speech recognized")
	ErrNoWake     = errors.New("wake phrase not heard")
)

type Reply struct {
	Transcript string
	Intent     nlu.Intent
	Response   string
}

type Config struct {
	Classifier  *nlu.Classifier
	Dispatcher  *nlu.Dispatcher
	Transcriber stt.Transcriber // nil disables audio input
	STTOptions  stt.Options
	// Wake, when enabled, is required at the start of microphone captures.
	Wake nlu.Wake
	// MaxSamples bounds decoded uploads; zero means unbounded.
	MaxSamples int
}

type Assistant struct {
	cfg Config
}

func New(cfg Config) (*Assistant, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("nil classifier")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("nil dispatcher")
	}
	if cfg.Transcriber == nil {
		cfg.Transcriber = stt.Disabled{}
	}
	return &Assistant{cfg: cfg}, nil
}

// SpeechAvailable reports whether audio submissions can be transcribed.
func (a *Assistant) SpeechAvailable() bool {
	return stt.Available(a.cfg.Transcriber)
}

// HandleText answers typed input.
func (a *Assistant) HandleText(sess *session.Session, text string) (Reply, error) {
	return a.handle(sess, session.User, text)
}

// HandleAudio decodes an uploaded file, transcribes it and answers it.
func (a *Assistant) HandleAudio(ctx context.Context, sess *session.Session, r io.ReadSeeker, name string) (Reply, error) {
	if !a.SpeechAvailable() {
		return Reply{}, stt.ErrUnavailable
	}

	pcm, err := audioconv.Decode(r, name, audioconv.Options{MaxSamples: a.cfg.MaxSamples})
	if err != nil {
		return Reply{}, err
	}

	text, err := a.transcribe(ctx, pcm)
	if err != nil {
		return Reply{}, err
	}
	return a.handle(sess, session.UserAudio, text)
}

// HandleVoice answers a microphone capture, enforcing the wake phrase when
// one is configured.
func (a *Assistant) HandleVoice(ctx context.Context, sess *session.Session, pcm []float32) (Reply, error) {
	text, err := a.transcribe(ctx, pcm)
	if err != nil {
		return Reply{}, err
	}

	if w := a.cfg.Wake; w.Enabled() {
		if !w.Detect(text) {
			log.Info("Ignoring capture without wake phrase", "transcript", text)
			return Reply{Transcript: text}, ErrNoWake
		}
		text = w.Strip(text)
	}
	return a.handle(sess, session.UserVoice, text)
}

func (a *Assistant) transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}
	res, err := a.cfg.Transcriber.TranscribePCM(ctx, pcm, a.cfg.STTOptions)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	log.Info("Transcribed", "text", text, "language", res.Language)
	return text, nil
}

func (a *Assistant) handle(sess *session.Session, who session.Speaker, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyInput
	}

	res := a.cfg.Classifier.Classify(text)
	response := a.cfg.Dispatcher.Dispatch(res.Intent, res.Param)

	if sess != nil {
		sess.Exchange(who, text, response)
	}
	log.Info("Handled", "session", sessionID(sess), "input", who, "intent", res.Intent)

	return Reply{
		Transcript: text,
		Intent:     res.Intent,
		Response:   response,
	}, nil
}

func sessionID(s *session.Session) string {
	if s == nil {
		return ""
	}
	return s.ID
}

// UserMessage renders an error from the Handle methods the way it is shown
// to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Please type a command or upload audio."
	case errors.Is(err, stt.ErrUnavailable):
		return "Speech recognition is not available on this server. Use text input instead."
	case errors.Is(err, ErrNoSpeech):
		return "No speech recognized in the file."
	case errors.Is(err, ErrNoWake):
		return "Say the wake phrase first."
	default:
		return "Failed to process audio file: " + err.Error()
	}
}
