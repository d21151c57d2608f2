package env

import (
	"os"
	"strings"

	"github.com/coastalsim/longshore/internal/envvar"
)

// Environment identifies the runtime environment the daemon runs in.
type Environment string

const (
	// Development selects human-readable logging and relaxed defaults.
	Development Environment = "development"

	// Production selects structured logging suitable for collectors.
	Production Environment = "production"
)

// FromEnv determines the environment from LONGSHORE_ENV. Anything other
// than "production" (case-insensitive) selects Development.
func FromEnv() Environment {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(envvar.LongshoreEnv)))
	if raw == string(Production) {
		return Production
	}

	return Development
}
