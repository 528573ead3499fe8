// Package config loads MathStep settings from defaults, an optional YAML
// (or TOML/JSON) file and MATHSTEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/llm"
)

// EnvPrefix is prepended to every environment override, e.g.
// MATHSTEP_LLM_PROVIDER for llm.provider.
const EnvPrefix = "MATHSTEP"

// Config holds application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Bot      BotConfig      `mapstructure:"bot"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LLMConfig selects and tunes the model provider. An empty Provider means
// "pick the first provider whose standard key variable is set".
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Structured  bool          `mapstructure:"structured"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// DatabaseConfig holds the event store location: a SQLite path, a file:
// URI, or a postgres:// URL. Empty means the default data directory.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type UIConfig struct {
	Language string `mapstructure:"language"`
}

// BotConfig configures the Telegram front end.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	Addr        string        `mapstructure:"addr"`
	PollTimeout int           `mapstructure:"poll_timeout"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	Debug       bool          `mapstructure:"debug"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.structured", false)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("database.dsn", "")
	v.SetDefault("ui.language", string(i18n.Default))
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.addr", ":8080")
	v.SetDefault("bot.poll_timeout", 30)
	v.SetDefault("bot.session_ttl", 6*time.Hour)
	v.SetDefault("bot.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration. path, when set, must exist; otherwise
// MATHSTEP_CONFIG is tried, then config.{yaml,toml,json} under the user
// config directory, and a missing default file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := DefaultDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	return c, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/mathstep (or the platform
// equivalent).
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "mathstep"), nil
}

// Language returns the configured starting language, falling back to the
// default for unknown values.
func (c Config) Language() i18n.Language {
	lang, err := i18n.ParseLanguage(c.UI.Language)
	if err != nil {
		return i18n.Default
	}
	return lang
}

// ResolveAPIKey picks the provider and its key. The provider-specific
// variable (GEMINI_API_KEY and friends) wins, then MATHSTEP_LLM_API_KEY,
// then llm.api_key from the file. With no provider configured the first
// provider whose standard variable is set is chosen, else Gemini. An
// empty key is not an error.
func (c Config) ResolveAPIKey() (provider, key string) {
	provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if provider == "" {
		if discovered, ok := llm.DiscoverConfig(); ok {
			return discovered.Provider, discovered.APIKey()
		}
		provider = llm.ProviderGemini
	}
	if env := llm.KeyEnvVar(provider); env != "" {
		if k := strings.TrimSpace(os.Getenv(env)); k != "" {
			return provider, k
		}
	}
	// Viper has already let MATHSTEP_LLM_API_KEY override the file value.
	return provider, strings.TrimSpace(c.LLM.APIKey)
}

// LLMConfig builds the provider stack configuration from the resolved
// values.
func (c Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	provider, key := c.ResolveAPIKey()
	cfg.Provider = provider
	cfg.SetAPIKey(key)
	cfg.SetModel(c.LLM.Model)
	cfg.SetBaseURL(c.LLM.BaseURL)
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.LLM.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = c.LLM.MaxAttempts
	}
	return cfg
}

// SlogLevel parses Log.Level ("debug", "info", "warn", "error"),
// defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
