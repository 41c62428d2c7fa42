package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Now is the clock used for createdAt/updatedAt stamps. Tests replace it.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// Global logger: may run before logger.Configure
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
