// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// validate checks the merged [StructuredConfig] for values that are invalid
// for every consumer. Missing values are left to the per-process views.
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.RequestTimeout < 0 || cfg.Server.RequestTimeout < 0 {
		return fmt.Errorf("negative request timeout: %w", ErrInvalidAdapterConfigs)
	}
	if cfg.App.AccessTokenTTL < 0 || cfg.App.RefreshTokenTTL < 0 {
		return fmt.Errorf("negative token lifetime: %w", ErrInvalidAppConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	address := cfg.Adapter.HTTPAddress
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return errors.Join(ErrInvalidAdapterConfigs, err)
	}

	return nil
}

func (cfg *DevServerConfig) validate() error {
	if cfg.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.TokenSignKey == "" || cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.RefreshTokenTTL < cfg.AccessTokenTTL {
		return fmt.Errorf("refresh token ttl is shorter than access token ttl: %w", ErrInvalidAppConfigs)
	}

	return nil
}
