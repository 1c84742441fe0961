package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	cfg := Load()
	assert.Equal(t, "", cfg.App.APIKey)

	t.Setenv("API_KEY", "poc-key-123")
	cfg = Load()
	assert.Equal(t, "poc-key-123", cfg.App.APIKey)
	assert.Equal(t, "Asia/Colombo", cfg.Assistant.Timezone)
	assert.Equal(t, 5, cfg.Knowledge.TopK)
	assert.Equal(t, 0.3, cfg.Knowledge.Threshold)
	assert.Equal(t, 3*time.Second, cfg.Knowledge.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, 20, cfg.Assistant.HistoryLimit)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.Campus.BaseURL)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_DURATION", "250ms")
	t.Setenv("X_SECONDS", "2")
	t.Setenv("X_BAD", "soon")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_FLOAT", "0.75")

	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("X_DURATION", time.Second))
	assert.Equal(t, 2*time.Second, getEnvAsDuration("X_SECONDS", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("X_BAD", time.Second))
	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.Equal(t, 0.75, getEnvAsFloat("X_FLOAT", 0.1))
	assert.Equal(t, 7, getEnvAsInt("X_MISSING", 7))
}

func TestEnvAsFloatMap(t *testing.T) {
	t.Setenv("X_THRESHOLDS", "harassment=0.4, spam = 0.8,broken,violence=x")
	got := getEnvAsFloatMap("X_THRESHOLDS")
	assert.Equal(t, map[string]float64{"harassment": 0.4, "spam": 0.8}, got)
}
