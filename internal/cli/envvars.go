package cli

import (
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
)

// baseEnv defines root CLI defaults sourced from KLONDIKE_* env vars.
type baseEnv struct {
	// ConfigPath is the game config path from KLONDIKE_CONFIG.
	ConfigPath string `env:"KLONDIKE_CONFIG"`
	// LogLevel is the logging level from KLONDIKE_LOG_LEVEL.
	LogLevel string `env:"KLONDIKE_LOG_LEVEL"`
}

// simulateEnv captures KLONDIKE_* inputs for simulation runs.
type simulateEnv struct {
	// Seed is the starting seed from KLONDIKE_SEED.
	Seed int64 `env:"KLONDIKE_SEED"`
	// Games is the batch size from KLONDIKE_GAMES.
	Games int `env:"KLONDIKE_GAMES"`
	// Advisor is the strategy name from KLONDIKE_ADVISOR.
	Advisor string `env:"KLONDIKE_ADVISOR"`
	// StoreDSN is the postgres DSN from KLONDIKE_STORE_DSN.
	StoreDSN string `env:"KLONDIKE_STORE_DSN"`
}

// dailyEnv captures inputs for daily-challenge helpers.
type dailyEnv struct {
	// Secret signs and verifies challenge tokens, from KLONDIKE_DAILY_SECRET.
	Secret string `env:"KLONDIKE_DAILY_SECRET"`
}

// parseEnv fills target from KLONDIKE_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
