package config

import (
	"fmt"
	"time"
)

// DevServerConfig is the configuration of the in-memory development API
// server assembled from [StructuredConfig].
type DevServerConfig struct {
	// HTTPAddress is the listen address, "host:port".
	HTTPAddress string
	// RequestTimeout bounds the handling time of one request.
	RequestTimeout time.Duration
	// TokenSignKey signs issued JWTs (HS256).
	TokenSignKey string
	// TokenIssuer is the "iss" claim of issued JWTs.
	TokenIssuer string
	// AccessTokenTTL and RefreshTokenTTL are the lifetimes of the issued pair.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// LogFile is optional; logs go to stdout when empty.
	LogFile string
}

// GetDevServerConfig builds and validates the development server view of the
// merged structured configuration.
func GetDevServerConfig() (*DevServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	devCfg := newDevServerConfig(cfg)
	return devCfg, devCfg.validate()
}

func newDevServerConfig(cfg *StructuredConfig) *DevServerConfig {
	return &DevServerConfig{
		HTTPAddress:     cfg.Server.HTTPAddress,
		RequestTimeout:  cfg.Server.RequestTimeout,
		TokenSignKey:    cfg.App.TokenSignKey,
		TokenIssuer:     cfg.App.TokenIssuer,
		AccessTokenTTL:  cfg.App.AccessTokenTTL,
		RefreshTokenTTL: cfg.App.RefreshTokenTTL,
		LogFile:         cfg.App.LogFile,
	}
}
