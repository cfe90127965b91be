// Package config loads the daemon configuration: built-in defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"assistant/internal/ipc"
	"assistant/internal/nlu"
	"assistant/internal/session"
	"assistant/pkg/stt"
)

const (
	BackendNone    = "none"
	BackendWhisper = "whisper"
	BackendOpenAI  = "openai"
)

type Config struct {
	NLU     NLUConfig     `yaml:"nlu"`
	History HistoryConfig `yaml:"history"`
	Web     WebConfig     `yaml:"web"`
	IPC     IPCConfig     `yaml:"ipc"`
	STT     STTConfig     `yaml:"stt"`
	Audio   AudioConfig   `yaml:"audio"`
	// Proxy is a SOCKS5 address for outbound API calls; empty dials directly.
	Proxy string `yaml:"proxy"`
}

type NLUConfig struct {
	Threshold float64          `yaml:"threshold"`
	Shortcuts []ShortcutConfig `yaml:"shortcuts"`
	Phrases   []PhraseConfig   `yaml:"phrases"`
	Wake      WakeConfig       `yaml:"wake"`
}

// ShortcutConfig entries are checked in file order.
type ShortcutConfig struct {
	Intent    string   `yaml:"intent"`
	Keywords  []string `yaml:"keywords"`
	MaxLen    int      `yaml:"max_len,omitempty"`
	PassParam bool     `yaml:"pass_param,omitempty"`
}

type PhraseConfig struct {
	Intent  string   `yaml:"intent"`
	Phrases []string `yaml:"phrases"`
}

type WakeConfig struct {
	Phrase    string  `yaml:"phrase"`
	Threshold float64 `yaml:"threshold"`
	Required  bool    `yaml:"required"`
}

type HistoryConfig struct {
	DisplayCap int `yaml:"display_cap"`
}

type WebConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type IPCConfig struct {
	Socket string `yaml:"socket"`
}

type STTConfig struct {
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	OpenAIModel string `yaml:"openai_model"`
	Language    string `yaml:"language"`
	Threads     int    `yaml:"threads"`
	MaxSeconds  int    `yaml:"max_seconds"`
}

type AudioConfig struct {
	Beep  string `yaml:"beep"`
	Voice string `yaml:"voice"`
}

func Default() Config {
	cfg := Config{
		NLU: NLUConfig{
			Threshold: nlu.DefaultThreshold,
			Wake: WakeConfig{
				Phrase:    nlu.DefaultWakePhrase,
				Threshold: nlu.DefaultWakeThreshold,
			},
		},
		History: HistoryConfig{DisplayCap: session.DefaultDisplayCap},
		Web: WebConfig{
			Addr:           "127.0.0.1:8501",
			MaxUploadBytes: 25 << 20,
		},
		IPC: IPCConfig{Socket: ipc.DefaultSocketPath},
		STT: STTConfig{
			Backend:     BackendWhisper,
			Model:       "model/ggml-base.en.bin",
			OpenAIModel: stt.DefaultOpenAIModel,
			Language:    "en",
			MaxSeconds:  120,
		},
		Audio: AudioConfig{
			Beep:  "beep.mp3",
			Voice: "en",
		},
	}
	for _, s := range nlu.DefaultShortcuts() {
		cfg.NLU.Shortcuts = append(cfg.NLU.Shortcuts, ShortcutConfig{
			Intent:    s.Intent.String(),
			Keywords:  s.Keywords,
			MaxLen:    s.MaxLen,
			PassParam: s.PassParam,
		})
	}
	for _, p := range nlu.DefaultPhrases() {
		cfg.NLU.Phrases = append(cfg.NLU.Phrases, PhraseConfig{
			Intent:  p.Intent.String(),
			Phrases: p.Phrases,
		})
	}
	return cfg
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Web.Addr, "ASSISTANT_ADDR")
	set(&c.IPC.Socket, "ASSISTANT_SOCKET")
	set(&c.STT.Backend, "STT_BACKEND")
	set(&c.STT.Model, "WHISPER_MODEL")
	set(&c.Proxy, "SOCKS_PROXY")
}

func (c *Config) Validate() error {
	var errs []error
	if c.NLU.Threshold <= 0 || c.NLU.Threshold > 100 {
		errs = append(errs, fmt.Errorf("nlu.threshold %v out of range (0, 100]", c.NLU.Threshold))
	}
	if c.NLU.Wake.Required && (c.NLU.Wake.Threshold <= 0 || c.NLU.Wake.Threshold > 100) {
		errs = append(errs, fmt.Errorf("nlu.wake.threshold %v out of range (0, 100]", c.NLU.Wake.Threshold))
	}
	if c.History.DisplayCap <= 0 {
		errs = append(errs, errors.New("history.display_cap must be positive"))
	}
	switch c.STT.Backend {
	case BackendNone, BackendWhisper, BackendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("stt.backend %q: want none, whisper or openai", c.STT.Backend))
	}
	if _, err := c.Classifier(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Classifier translates the nlu section into classifier settings.
func (c *Config) Classifier() (nlu.Config, error) {
	out := nlu.Config{Threshold: c.NLU.Threshold}

	for i, s := range c.NLU.Shortcuts {
		intent, err := nlu.ParseIntent(s.Intent)
		if err != nil {
			return nlu.Config{}, fmt.Errorf("nlu.shortcuts[%d]: %w", i, err)
		}
		out.Shortcuts = append(out.Shortcuts, nlu.Shortcut{
			Intent:    intent,
			Keywords:  s.Keywords,
			MaxLen:    s.MaxLen,
			PassParam: s.PassParam,
		})
	}
	for i, p := range c.NLU.Phrases {
		intent, err := nlu.ParseIntent(p.Intent)
		if err != nil {
			return nlu.Config{}, fmt.Errorf("nlu.phrases[%d]: %w", i, err)
		}
		out.Phrases = append(out.Phrases, nlu.Phrases{Intent: intent, Phrases: p.Phrases})
	}
	return out, nil
}

// Wake is disabled unless the config requires it.
func (c *Config) Wake() nlu.Wake {
	if !c.NLU.Wake.Required {
		return nlu.Wake{}
	}
	return nlu.Wake{Phrase: c.NLU.Wake.Phrase, Threshold: c.NLU.Wake.Threshold}
}

func (c *Config) STTOptions() stt.Options {
	return stt.Options{
		Language: c.STT.Language,
		Threads:  c.STT.Threads,
	}
}

// MaxSamples bounds decoded uploads at 16 kHz.
func (c *Config) MaxSamples() int {
	if c.STT.MaxSeconds <= 0 {
		return 0
	}
	return c.STT.MaxSeconds * 16000
}
