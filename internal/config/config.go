package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Query    QueryConfig    `mapstructure:"query"`
	Export   ExportConfig   `mapstructure:"export"`
	History  HistoryConfig  `mapstructure:"history"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type QueryConfig struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
	Role         string `mapstructure:"role"`
}

type ExportConfig struct {
	Directory string `mapstructure:"directory"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "whispey",
			SSLMode:  "prefer",
		},
		Query: QueryConfig{
			DefaultLimit: 50,
			TimeoutMS:    30000,
			Role:         "admin",
		},
		Export: ExportConfig{
			Directory: ".",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "history.db",
		},
	}
}

// Load loads configuration from files and WHISPEY_-prefixed environment
// variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config paths in priority order
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "whispey"))
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("WHISPEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "whispey")
	v.SetDefault("database.ssl_mode", "prefer")
	v.SetDefault("query.default_limit", 50)
	v.SetDefault("query.timeout_ms", 30000)
	v.SetDefault("query.role", "admin")
	v.SetDefault("export.directory", ".")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "history.db")

	// Missing config file is fine, defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ConnectionConfig converts the database section to a connection config.
func (c *Config) ConnectionConfig() models.ConnectionConfig {
	return models.ConnectionConfig{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Database: c.Database.Database,
		SSLMode:  c.Database.SSLMode,
	}
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "whispey"), nil
}
