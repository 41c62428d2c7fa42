package main

import (
	"os"

	"github.com/yigit/academy/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/academy/internal/server"
)

// @title Academy API
// @version 1.0
// @description Content API and admin session endpoints for the Academy course catalog
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@academy.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin session token as "Bearer <token>"

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name academy_session
// @description Admin session cookie set by the console login

func main() {
	// CONFIG_PATH overrides configs/config.yaml
	srv, err := server.NewServer(os.Getenv("CONFIG_PATH"))
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
