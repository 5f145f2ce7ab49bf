package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName     string
	Port       string
	Tournament TournamentConfig
	Slack      SlackConfig
	Turso      TursoConfig
	ProjectID  string
}

type TournamentConfig struct {
	ID           string
	MachineCount int
	CommitDelay  time.Duration
	AutoAdvance  bool
}

type SlackConfig struct {
	Token     string
	ChannelID string
	DryRun    bool
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
