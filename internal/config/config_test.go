package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline-agent/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, config.ModeLocal, cfg.Mode)
	assert.Equal(t, "mock", cfg.AdviceBackend)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "log", cfg.AlertBackend)
	assert.Equal(t, "user", cfg.ProfileKey)
	assert.Equal(t, 30*time.Second, cfg.AdviceTimeout)
	assert.Nil(t, cfg.DefaultLocation)
}

func TestGCPModeDefaultsToVertex(t *testing.T) {
	t.Setenv("LIFELINE_MODE", "gcp")
	t.Setenv("LIFELINE_GCP_PROJECT", "lifeline-prod")
	t.Setenv("LIFELINE_STORAGE_BACKEND", "firestore")
	t.Setenv("LIFELINE_ADVICE_TIMEOUT", "12s")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "vertex", cfg.AdviceBackend)
	assert.Equal(t, 12*time.Second, cfg.AdviceTimeout)
}

func TestDefaultLocation(t *testing.T) {
	t.Setenv("LIFELINE_DEFAULT_LAT", "40.4168")
	t.Setenv("LIFELINE_DEFAULT_LNG", "-3.7038")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.DefaultLocation)
	assert.InDelta(t, 40.4168, cfg.DefaultLocation.Lat, 1e-9)
	assert.InDelta(t, -3.7038, cfg.DefaultLocation.Lng, 1e-9)
}

func TestInvalidConfig(t *testing.T) {
	cases := map[string]map[string]string{
		"gcp without project":  {"LIFELINE_MODE": "gcp"},
		"flows without url":    {"LIFELINE_ADVICE_BACKEND": "flows"},
		"redis without addr":   {"LIFELINE_STORAGE_BACKEND": "redis"},
		"postgres without dsn": {"LIFELINE_STORAGE_BACKEND": "postgres"},
		"unknown storage":      {"LIFELINE_STORAGE_BACKEND": "s3"},
		"mqtt without broker":  {"LIFELINE_ALERT_BACKEND": "mqtt"},
		"bad timeout":          {"LIFELINE_ADVICE_TIMEOUT": "soon"},
		"bad redis db":         {"LIFELINE_REDIS_DB": "zero"},
		"half a location":      {"LIFELINE_DEFAULT_LAT": "1"},
		"location out of range": {
			"LIFELINE_DEFAULT_LAT": "91",
			"LIFELINE_DEFAULT_LNG": "0",
		},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.FromEnv()
			assert.Error(t, err)
		})
	}
}
