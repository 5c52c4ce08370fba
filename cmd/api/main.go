package main

import (
	"os"

	"github.com/portalescolar/diplomas/internal/pkg/logger"
	"github.com/portalescolar/diplomas/internal/server"
)

// @title Portal Escolar de Diplomas
// @version 1.0
// @description Issues school diplomas as PDF documents and verifies them by folio or CURP.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Static token for administrative endpoints

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
