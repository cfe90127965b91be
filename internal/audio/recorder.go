package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms
)

var ErrNoSpeech = errors.New("no speech captured")

type RecorderConfig struct {
	SilenceRMS      float64       // frames below this RMS count as silence
	SilenceDuration time.Duration // trailing silence that ends a capture
	MaxLength       time.Duration
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		SilenceRMS:      0.015,
		SilenceDuration: 600 * time.Millisecond,
		MaxLength:       10 * time.Second,
	}
}

// Recorder captures microphone speech. Init must be called before Record.
type Recorder struct {
	cfg RecorderConfig
}

func NewRecorder(cfg RecorderConfig) *Recorder {
	def := DefaultRecorderConfig()
	if cfg.SilenceRMS <= 0 {
		cfg.SilenceRMS = def.SilenceRMS
	}
	if cfg.SilenceDuration <= 0 {
		cfg.SilenceDuration = def.SilenceDuration
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	return &Recorder{cfg: cfg}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record waits for speech and returns once it is followed by enough silence,
// MaxLength passes, or ctx is done. Leading silence is dropped.
func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	frameDur := time.Second * frameSize / SampleRate
	maxFrames := int(r.cfg.MaxLength / frameDur)
	silenceFrames := int(r.cfg.SilenceDuration / frameDur)

	var (
		speaking bool
		silent   int
	)
	for i := 0; i < maxFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > r.cfg.SilenceRMS {
			speaking = true
			silent = 0
			out = append(out, buf...)
			continue
		}
		if !speaking {
			continue
		}
		silent++
		if silent >= silenceFrames {
			break
		}
		out = append(out, buf...)
	}

	if len(out) == 0 {
		return nil, ErrNoSpeech
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
