package observability

import (
	"github.com/rs/zerolog"

	"github.com/danmuck/colonies/internal/logging"
)

// InitLogger returns a component logger honoring the COLONIES_LOG_* overrides.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime(app)
	cfg := logging.Resolve(logging.ProfileRuntime)
	cfg.App = app
	return logging.New(cfg)
}
