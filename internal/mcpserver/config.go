package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// RulesFile points at a gateway constraint file layered over the
	// built-in defaults.
	RulesFile string

	// Validate tool defaults.
	ValidateNoWarnings bool

	// Repair loop defaults.
	MaxRounds       int
	ProposalTimeout time.Duration

	// Gemini settings for the repair proposer.
	GeminiAPIKey string
	GeminiModel  string
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from SPECMEND_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		RulesFile:          os.Getenv("SPECMEND_RULES_FILE"),
		ValidateNoWarnings: envBool("SPECMEND_VALIDATE_NO_WARNINGS", false),
		MaxRounds:          envInt("SPECMEND_MAX_ROUNDS", 10),
		ProposalTimeout:    envDuration("SPECMEND_PROPOSAL_TIMEOUT", 30*time.Second),
		GeminiAPIKey:       os.Getenv("SPECMEND_GEMINI_API_KEY"),
		GeminiModel:        os.Getenv("SPECMEND_GEMINI_MODEL"),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
