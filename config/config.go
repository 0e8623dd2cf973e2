// Package config loads service configuration from an optional config file
// and GRAMIN_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"graminhealth/pkg"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Emergency EmergencyConfig `mapstructure:"emergency"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// GenAIConfig selects and parametrizes the backend AI provider.
type GenAIConfig struct {
	Provider string        `mapstructure:"provider"` // gemini, openai, mock
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ChatConfig tunes the chat session manager.
type ChatConfig struct {
	// MessageCap limits user turns per session; 0 disables the cap.
	MessageCap int `mapstructure:"message_cap"`
}

// EmergencyConfig overrides the built-in dial directory when non-empty.
type EmergencyConfig struct {
	Contacts []pkg.EmergencyContact `mapstructure:"contacts"`
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.GenAI.Provider {
	case "gemini", "openai":
		// API key may still be absent; the chat manager degrades to a
		// disconnected session instead of refusing to start.
	case "mock":
	default:
		return fmt.Errorf("unknown genai provider %q", c.GenAI.Provider)
	}
	if c.Chat.MessageCap < 0 {
		return errors.New("chat.message_cap must be >= 0")
	}
	return nil
}

// Load reads configuration. A missing config file is fine — environment
// variables (GRAMIN_GENAI_API_KEY and friends) are enough to run.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("genai.provider", "gemini")
	v.SetDefault("genai.timeout", 60*time.Second)
	v.SetDefault("chat.message_cap", 50)
	// Registering empty defaults lets AutomaticEnv feed these keys into
	// Unmarshal even when no config file mentions them.
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "")
	v.SetDefault("genai.base_url", "")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("GRAMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
