package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIT_AI_MODEL", "ollama:llama3")
	for _, key := range []string{"STAGE_PACING_SECONDS", "LLM_MAX_ATTEMPTS", "LLM_BACKOFF_MIN_SECONDS", "LLM_BACKOFF_MAX_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "ollama:llama3", cfg.Ai.Model)
	assert.Equal(t, 2*time.Second, cfg.Ai.StagePacing)
	assert.Equal(t, 3, cfg.Ai.MaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.Ai.BackOffMin)
	assert.Equal(t, 30*time.Second, cfg.Ai.BackOffMax)
}

func TestGetEnvAsSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"whole seconds", "3", 3 * time.Second},
		{"fraction", "0.5", 500 * time.Millisecond},
		{"zero disables", "0", 0},
		{"negative falls back", "-1", time.Minute},
		{"garbage falls back", "soon", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_SECONDS", tt.value)
			assert.Equal(t, tt.want, getEnvAsSeconds("TEST_SECONDS", time.Minute))
		})
	}
}
