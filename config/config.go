package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/spachava753/phonebook/mail"
)

// Prefix is the environment variable prefix.
const Prefix = "CONTACTS"

// SMTP holds outgoing mail settings.
type SMTP struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"465"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM"`
	TLS      bool   `envconfig:"TLS" default:"true"`
}

// Config holds the phonebook configuration.
// Environment variables are read with the CONTACTS_ prefix, for example
// CONTACTS_DB_PATH or CONTACTS_SMTP_HOST.
type Config struct {
	DBPath           string `envconfig:"DB_PATH" default:"contacts.db"`
	SettingsPath     string `envconfig:"SETTINGS_PATH"`
	Opener           string `envconfig:"OPENER"`
	BatchEmailLookup bool   `envconfig:"BATCH_EMAIL_LOOKUP" default:"false"`

	SMTP SMTP `envconfig:"SMTP"`
}

// New parses the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults fills SettingsPath and checks ranges.
func (c *Config) ResolveDefaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("unsupported SMTP_PORT: %d", c.SMTP.Port)
	}
	if c.SettingsPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		c.SettingsPath = filepath.Join(dir, "phonebook", "settings.toml")
	}
	return nil
}

// Mail returns the SMTP settings as a mail.Config.
func (c *Config) Mail() mail.Config {
	return mail.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		TLS:      c.SMTP.TLS,
	}
}

// Usage prints the recognised variables.
func Usage() error {
	var cfg Config
	return envconfig.Usage(Prefix, &cfg)
}
