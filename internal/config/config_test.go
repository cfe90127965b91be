package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/nlu"
)

func TestDefaultMatchesClassifierDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	got, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, nlu.DefaultConfig(), got)
	assert.False(t, cfg.Wake().Enabled())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadShippedPresets(t *testing.T) {
	def, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)
	require.NoError(t, def.Validate())
	got, err := def.Classifier()
	require.NoError(t, err)
	assert.Equal(t, nlu.DefaultConfig(), got)

	strict, err := Load(filepath.Join("..", "..", "configs", "strict.yaml"))
	require.NoError(t, err)
	require.NoError(t, strict.Validate())
	assert.Equal(t, 80.0, strict.NLU.Threshold)
	assert.Equal(t, 40, strict.History.DisplayCap)
	assert.True(t, strict.Wake().Enabled())
	// phrases are not in the file, so the defaults survive
	assert.Len(t, strict.NLU.Phrases, len(nlu.DefaultPhrases()))

	ncfg, err := strict.Classifier()
	require.NoError(t, err)
	c, err := nlu.NewClassifier(ncfg)
	require.NoError(t, err)
	res := c.Classify("2 times 3")
	assert.Equal(t, nlu.Calculator, res.Intent)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nlu: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold", func(c *Config) { c.NLU.Threshold = 150 }},
		{"display cap", func(c *Config) { c.History.DisplayCap = 0 }},
		{"backend", func(c *Config) { c.STT.Backend = "vosk" }},
		{"intent", func(c *Config) { c.NLU.Shortcuts[0].Intent = "weather" }},
		{"wake", func(c *Config) {
			c.NLU.Wake.Required = true
			c.NLU.Wake.Threshold = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ASSISTANT_ADDR": ":9000",
		"STT_BACKEND":    "openai",
		"WHISPER_MODEL":  "  ",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":9000", cfg.Web.Addr)
	assert.Equal(t, BackendOpenAI, cfg.STT.Backend)
	assert.Equal(t, Default().STT.Model, cfg.STT.Model)
	assert.Equal(t, Default().IPC.Socket, cfg.IPC.Socket)
}

func TestMaxSamples(t *testing.T) {
	cfg := Default()
	cfg.STT.MaxSeconds = 2
	assert.Equal(t, 32000, cfg.MaxSamples())
	cfg.STT.MaxSeconds = 0
	assert.Zero(t, cfg.MaxSamples())
}
