package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvUint64 returns EnvPrefix+key parsed as uint64, or defaultVal if
// unset or invalid.
func getEnvUint64(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" and "false", "0", "no"
// (case-insensitive). Anything else keeps defaultVal.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether any of names was given on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides fills every flag that was not given on the command line
// from its FIBSEQ_ variable, so the priority is flags > env > defaults.
//
// Supported environment variables:
//   - FIBSEQ_KIND, FIBSEQ_COUNT, FIBSEQ_RESET_AT, FIBSEQ_SKIP
//   - FIBSEQ_FIRST, FIBSEQ_SECOND, FIBSEQ_ITEMS
//   - FIBSEQ_TIMEOUT, FIBSEQ_SESSION_TTL (durations: "30s", "5m")
//   - FIBSEQ_PORT, FIBSEQ_MAX_COUNT, FIBSEQ_MAX_SKIP, FIBSEQ_MAX_SESSIONS, FIBSEQ_RATE_LIMIT
//   - FIBSEQ_SERVER, FIBSEQ_JSON, FIBSEQ_HEX, FIBSEQ_VERBOSE, FIBSEQ_QUIET,
//     FIBSEQ_NO_COLOR, FIBSEQ_VERIFY, FIBSEQ_INTERACTIVE (bools)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "count") {
		config.Count = getEnvUint64("COUNT", config.Count)
	}
	if !isFlagSet(fs, "skip") {
		config.Skip = getEnvUint64("SKIP", config.Skip)
	}
	if !isFlagSet(fs, "max-count") {
		config.MaxCount = getEnvUint64("MAX_COUNT", config.MaxCount)
	}
	if !isFlagSet(fs, "max-skip") {
		config.MaxSkip = getEnvUint64("MAX_SKIP", config.MaxSkip)
	}
	if !isFlagSet(fs, "max-sessions") {
		config.MaxSessions = getEnvInt("MAX_SESSIONS", config.MaxSessions)
	}
	if !isFlagSet(fs, "rate-limit") {
		config.RateLimit = getEnvInt("RATE_LIMIT", config.RateLimit)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
	if !isFlagSet(fs, "session-ttl") {
		config.SessionTTL = getEnvDuration("SESSION_TTL", config.SessionTTL)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "kind") {
		config.Kind = getEnvString("KIND", config.Kind)
	}
	if !isFlagSet(fs, "reset-at") {
		config.resetAtRaw = getEnvString("RESET_AT", config.resetAtRaw)
	}
	if !isFlagSet(fs, "first") {
		config.First = getEnvString("FIRST", config.First)
	}
	if !isFlagSet(fs, "second") {
		config.Second = getEnvString("SECOND", config.Second)
	}
	if !isFlagSet(fs, "items") {
		config.itemsRaw = getEnvString("ITEMS", config.itemsRaw)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "hex") {
		config.HexOutput = getEnvBool("HEX", config.HexOutput)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "verify") {
		config.Verify = getEnvBool("VERIFY", config.Verify)
	}
	if !isFlagSet(fs, "interactive") {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
}
