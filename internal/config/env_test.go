// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllFields(t *testing.T) {
	environ := map[string]string{
		"CONFIG": "/path/to/config.json",

		"APP_TOKEN_SIGN_KEY":    "jwt_secret",
		"APP_TOKEN_ISSUER":      "drive",
		"APP_ACCESS_TOKEN_TTL":  "5m",
		"APP_REFRESH_TOKEN_TTL": "24h",
		"APP_LOG_FILE":          "drive.log",
		"APP_DOWNLOAD_DIR":      "/tmp/downloads",
		"APP_VERSION":           "0.3.1",

		"SERVER_ADDRESS":         "localhost:8000",
		"SERVER_REQUEST_TIMEOUT": "30s",

		"ADAPTER_ADDRESS":         "http://localhost:8000",
		"ADAPTER_REQUEST_TIMEOUT": "10s",

		// nested prefixes: STORAGE_ + DB_
		"STORAGE_DB_DATABASE_URI": ":memory:",

		"UNRELATED": "ignored",
	}

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg, environ))

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "jwt_secret", cfg.App.TokenSignKey)
	assert.Equal(t, "drive", cfg.App.TokenIssuer)
	assert.Equal(t, 5*time.Minute, cfg.App.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.App.RefreshTokenTTL)
	assert.Equal(t, "drive.log", cfg.App.LogFile)
	assert.Equal(t, "/tmp/downloads", cfg.App.DownloadDir)
	assert.Equal(t, "0.3.1", cfg.App.Version)

	assert.Equal(t, "localhost:8000", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, "http://localhost:8000", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)

	assert.Equal(t, ":memory:", cfg.Storage.DB.DSN)
}

func TestParseEnv_EmptyEnv(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg, map[string]string{}))
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	cfg := &StructuredConfig{}
	err := parseEnv(cfg, map[string]string{"APP_ACCESS_TOKEN_TTL": "invalid_duration"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}

func TestParseEnv_DurationFormats(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"hours", "2h", 2 * time.Hour},
		{"minutes", "45m", 45 * time.Minute},
		{"seconds", "30s", 30 * time.Second},
		{"combined", "1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &StructuredConfig{}
			require.NoError(t, parseEnv(cfg, map[string]string{"ADAPTER_REQUEST_TIMEOUT": tt.envValue}))
			assert.Equal(t, tt.expected, cfg.Adapter.RequestTimeout)
		})
	}
}

func TestProcessEnviron(t *testing.T) {
	t.Setenv("ADAPTER_ADDRESS", "http://from-process")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg, processEnviron()))
	assert.Equal(t, "http://from-process", cfg.Adapter.HTTPAddress)
}
