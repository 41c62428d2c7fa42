package main

import (
	"os"

	"github.com/yigit/academy/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("academyctl failed")
		os.Exit(1)
	}
}
