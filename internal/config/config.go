package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete process configuration of the debate server.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Debate DebateConfig `mapstructure:"debate"`
}

type ServerConfig struct {
	// Port the HTTP server listens on (default: 3000)
	Port int `mapstructure:"port"`
}

// OpenAIConfig configures the side arguing in favor of the topic.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig configures the side arguing against the topic.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type DebateConfig struct {
	// MaxTurns bounds the number of completed turns per debate (default: 8)
	MaxTurns int `mapstructure:"max_turns"`
	// MaxWords is the answer length asked of each side, 0 = unconstrained (default: 50)
	MaxWords int `mapstructure:"max_words"`
	// ProviderTimeout bounds a single provider call, 0 = disabled (default: 60s)
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 3000},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash-latest",
		},
		Debate: DebateConfig{
			MaxTurns:        8,
			MaxWords:        50,
			ProviderTimeout: 60 * time.Second,
		},
	}
}

// envBindings maps config keys onto the environment variables that set them.
var envBindings = map[string]string{
	"server.port":    "PORT",
	"openai.api_key": "OPENAI_API_KEY",
	"openai.model":   "OPENAI_MODEL",
	"gemini.api_key": "GEMINI_API_KEY",
	"gemini.model":   "GEMINI_MODEL",
}

// SetDefaults registers default values and environment bindings with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.port", defaults.Server.Port)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", defaults.OpenAI.Model)
	v.SetDefault("openai.base_url", defaults.OpenAI.BaseURL)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", defaults.Gemini.Model)
	v.SetDefault("gemini.base_url", defaults.Gemini.BaseURL)

	v.SetDefault("debate.max_turns", defaults.Debate.MaxTurns)
	v.SetDefault("debate.max_words", defaults.Debate.MaxWords)
	v.SetDefault("debate.provider_timeout", defaults.Debate.ProviderTimeout)

	// e.g. EMA_DEBATE_DEBATE_MAX_TURNS for debate.max_turns
	v.SetEnvPrefix("EMA_DEBATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load reads the configuration from v into a Config struct and validates it.
// A non-empty configFile is read before environment overrides apply.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
