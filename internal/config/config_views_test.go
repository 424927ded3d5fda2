package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			Adapter: ClientAdapter{HTTPAddress: "http://localhost:8000", RequestTimeout: 10 * time.Second},
			Storage: ClientStorage{DB: ClientDB{DSN: "drive.db"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(c *ClientConfig) {}},
		{name: "in-memory dsn allowed", mutate: func(c *ClientConfig) { c.Storage.DB.DSN = DSNMemory }},
		{name: "bare host:port", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "localhost:8000" }},
		{name: "empty dsn", mutate: func(c *ClientConfig) { c.Storage.DB.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "empty address", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "" }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero timeout", mutate: func(c *ClientConfig) { c.Adapter.RequestTimeout = 0 }, wantErr: ErrInvalidAdapterConfigs},
		{name: "address without host", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "http://" }, wantErr: ErrInvalidAdapterConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientDB_InMemory(t *testing.T) {
	assert.True(t, ClientDB{DSN: ":memory:"}.InMemory())
	assert.False(t, ClientDB{DSN: "drive.db"}.InMemory())
}

func TestNewClientConfig_MapsFields(t *testing.T) {
	cfg := newClientConfig(&StructuredConfig{
		App:     App{LogFile: "client.log", Version: "1.0.0", DownloadDir: "/tmp/dl", TokenSignKey: "ignored"},
		Adapter: Adapter{HTTPAddress: "http://api", RequestTimeout: time.Second},
		Storage: Storage{DB: DB{DSN: "drive.db"}},
	})

	assert.Equal(t, "client.log", cfg.App.LogFile)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "/tmp/dl", cfg.App.DownloadDir)
	assert.Equal(t, "http://api", cfg.Adapter.HTTPAddress)
	assert.Equal(t, time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "drive.db", cfg.Storage.DB.DSN)
}

func TestDevServerConfig_Validate(t *testing.T) {
	valid := func() *DevServerConfig {
		return newDevServerConfig(&StructuredConfig{
			App: App{
				TokenSignKey:    "secret",
				AccessTokenTTL:  5 * time.Minute,
				RefreshTokenTTL: time.Hour,
			},
			Server: Server{HTTPAddress: "localhost:8000"},
		})
	}

	tests := []struct {
		name    string
		mutate  func(c *DevServerConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(c *DevServerConfig) {}},
		{name: "no address", mutate: func(c *DevServerConfig) { c.HTTPAddress = "" }, wantErr: ErrInvalidServerConfigs},
		{name: "no sign key", mutate: func(c *DevServerConfig) { c.TokenSignKey = "" }, wantErr: ErrInvalidAppConfigs},
		{name: "no access ttl", mutate: func(c *DevServerConfig) { c.AccessTokenTTL = 0 }, wantErr: ErrInvalidAppConfigs},
		{name: "refresh shorter than access", mutate: func(c *DevServerConfig) { c.RefreshTokenTTL = time.Minute }, wantErr: ErrInvalidAppConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
