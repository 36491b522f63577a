package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath          = "config.toml"
	DefaultHTTPAddr            = ":8080"
	DefaultPGHost              = "127.0.0.1"
	DefaultPGPort              = 5432
	DefaultPGUser              = "postgres"
	DefaultPGDatabase          = "plume"
	DefaultPGSSLMode           = "disable"
	DefaultMaxArtifactBytes    = 10 * 1024 * 1024
	DefaultMaxDocumentChars    = 50000
	DefaultMinImportance       = 5
	DefaultContextLimit        = 20
	DefaultImportance          = 5
	DefaultDecaySchedule       = "0 3 * * *"
	DefaultDecayAfterDays      = 90
	DefaultProviderTimeoutSecs = 120
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Provider ProviderConfig `toml:"provider"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Memory   MemoryConfig   `toml:"memory"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// ProviderConfig points at the text-generation gateway requests are sent to.
type ProviderConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PipelineConfig bounds attachment handling for a single turn.
type PipelineConfig struct {
	MaxArtifactBytes int64 `toml:"max_artifact_bytes"`
	MaxDocumentChars int   `toml:"max_document_chars"`
}

// MemoryConfig tunes context loading and the decay job. The importance and
// limit knobs bound prompt size; they are policy, not contract.
type MemoryConfig struct {
	MinImportance     int    `toml:"min_importance"`
	ContextLimit      int    `toml:"context_limit"`
	DefaultImportance int    `toml:"default_importance"`
	DecaySchedule     string `toml:"decay_schedule"`
	DecayAfterDays    int    `toml:"decay_after_days"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Provider: ProviderConfig{
			BaseURL:        "http://127.0.0.1:8081",
			TimeoutSeconds: DefaultProviderTimeoutSecs,
		},
		Pipeline: PipelineConfig{
			MaxArtifactBytes: DefaultMaxArtifactBytes,
			MaxDocumentChars: DefaultMaxDocumentChars,
		},
		Memory: MemoryConfig{
			MinImportance:     DefaultMinImportance,
			ContextLimit:      DefaultContextLimit,
			DefaultImportance: DefaultImportance,
			DecaySchedule:     DefaultDecaySchedule,
			DecayAfterDays:    DefaultDecayAfterDays,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
