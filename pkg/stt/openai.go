package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"assistant/pkg/audioconv"
)

const DefaultOpenAIModel = "whisper-1"

// OpenAI sends captured audio to the OpenAI transcription endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds the cloud backend. httpClient may be nil.
func NewOpenAI(apiKey string, httpClient *http.Client, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrUnavailable)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (t *OpenAI) Close() error { return nil }

func (t *OpenAI) TranscribePCM(ctx context.Context, pcm16k []float32, opt Options) (Result, error) {
	if len(pcm16k) == 0 {
		return Result{}, errors.New("no audio samples provided")
	}

	wav, err := audioconv.EncodeWAV16k(pcm16k)
	if err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wav), "speech.wav", "audio/wav"),
		Model: openai.AudioModel(t.model),
	}
	if opt.Language != "" && opt.Language != "auto" {
		params.Language = openai.String(opt.Language)
	}
	if opt.InitialPrompt != "" {
		params.Prompt = openai.String(opt.InitialPrompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	return Result{
		Text:     text,
		Segments: []Segment{{Text: text}},
		Language: opt.Language,
	}, nil
}
