package app

import (
	"strings"

	"github.com/snippetvault/snippetvault/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level,
// defaulting to info. Debug mode switches to the console encoder.
func ConfigureLogging(level, mode string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, strings.EqualFold(strings.TrimSpace(mode), "debug"))
}
