// Package stt turns 16 kHz mono PCM into text. The recognizers themselves
// are external engines; this package only adapts them.
package stt

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no recognition backend is configured.
var ErrUnavailable = errors.New("speech recognition unavailable")

type Options struct {
	Language      string // "auto", "en", "ru", ...
	TranslateToEn bool
	Threads       int // <=0 => NumCPU()
	InitialPrompt string
	BeamSize      int // 0 = greedy
	SplitOnWord   bool
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}

type Transcriber interface {
	// TranscribePCM expects mono samples at 16 kHz in [-1, 1].
	TranscribePCM(ctx context.Context, pcm16k []float32, opt Options) (Result, error)
	Close() error
}

// Disabled stands in when no backend could be loaded.
type Disabled struct{}

func (Disabled) TranscribePCM(context.Context, []float32, Options) (Result, error) {
	return Result{}, ErrUnavailable
}

func (Disabled) Close() error { return nil }

// Available reports whether t can actually transcribe.
func Available(t Transcriber) bool {
	if t == nil {
		return false
	}
	_, disabled := t.(Disabled)
	return !disabled
}
