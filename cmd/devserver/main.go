// Command devserver runs the in-memory drive API for local development.
package main

import (
	"context"
	"os"

	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/fakeapi"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/server"
	"github.com/MKhiriev/go-drive-client/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	_, _ = build.WriteTo(os.Stdout)

	log := logger.NewLogger("go-drive-devserver")
	cfg, err := config.GetDevServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.LogFile != "" {
		log = logger.NewClientLogger("go-drive-devserver", cfg.LogFile)
	}

	handler, err := fakeapi.NewHandler(fakeapi.OptionsFromConfig(cfg), log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating fake api")
	}

	srv, err := server.NewServer(handler.Init(), cfg.HTTPAddress, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server run error")
	}
}
