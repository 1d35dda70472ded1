// Package config loads service configuration from YAML with environment
// variable expansion, .env file support, and OS keyring fallback for secrets.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// keyringService is the service name used in the OS keyring.
const keyringService = "phrasewatch"

// Config holds all service configuration.
type Config struct {
	// Server configures the webhook HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Assistant configures the assistant-service endpoint.
	Assistant AssistantConfig `yaml:"assistant"`

	// Conversations configures the messaging-platform API.
	Conversations ConversationsConfig `yaml:"conversations"`

	// Logging selects level and output format.
	Logging LoggingConfig `yaml:"logging"`

	// Heartbeat configures the periodic status log.
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
}

type AssistantConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`
}

type ConversationsConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug" or "info"
	Format string `yaml:"format"` // "json" or "text"
}

type HeartbeatConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Address: ":3110"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and bare $VAR references in
// config values.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}|\$([A-Z_][A-Z0-9_]*)`)

// expandEnv substitutes environment variable references in raw YAML text.
func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[3]
		}
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		return groups[2]
	})
}

// Parse unmarshals YAML bytes over the defaults, expanding environment
// variables first.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads a YAML configuration file. A .env file alongside the
// process is loaded first (and silently skipped when absent).
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// ResolveSecrets fills empty secrets from the OS keyring, then from
// environment variables. Config file values take precedence when set.
func (c *Config) ResolveSecrets(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.Assistant.APIKey = resolveSecret(c.Assistant.APIKey, "assistant_api_key", "ASSISTANT_API_KEY", logger)
	c.Conversations.Token = resolveSecret(c.Conversations.Token, "conversations_token", "CONVERSATIONS_TOKEN", logger)
}

func resolveSecret(current, keyringKey, envName string, logger *slog.Logger) string {
	if current != "" {
		return current
	}
	if val, err := keyring.Get(keyringService, keyringKey); err == nil && val != "" {
		logger.Debug("secret resolved from keyring", "key", keyringKey)
		return val
	}
	if val := os.Getenv(envName); val != "" {
		logger.Debug("secret resolved from environment", "var", envName)
		return val
	}
	return ""
}

// StoreSecret saves a secret to the OS keyring under the service name.
func StoreSecret(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// Validate checks that the credentials needed at startup are present.
func (c *Config) Validate() error {
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant api_key is required")
	}
	if c.Assistant.AssistantID == "" {
		return fmt.Errorf("assistant assistant_id is required")
	}
	if c.Conversations.Token == "" {
		return fmt.Errorf("conversations token is required")
	}
	return nil
}
