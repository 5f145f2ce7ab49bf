package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	DefaultPort         = "8080"
	DefaultDBName       = "bracket.db"
	DefaultTournamentID = "default"
	DefaultMachineCount = 5
	DefaultCommitDelay  = 10 * time.Second
)

// Load reads configuration from environment variables and .env file.
// Unset or invalid values fall back to their defaults.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		DBName: getEnv("DB_NAME", DefaultDBName),
		Port:   getEnv("PORT", DefaultPort),
		Tournament: TournamentConfig{
			ID:           getEnv("TOURNAMENT_ID", DefaultTournamentID),
			MachineCount: getMachineCount("MACHINE_COUNT", DefaultMachineCount),
			CommitDelay:  getDuration("COMMIT_DELAY", DefaultCommitDelay),
			AutoAdvance:  getBool("AUTO_ADVANCE", false),
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
			DryRun:    getBool("SLACK_DRY_RUN", false),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getMachineCount(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 10 {
		log.Warn("Invalid machine count, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn("Invalid boolean, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return b
}
