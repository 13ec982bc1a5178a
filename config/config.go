package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Sinks     SinksConfig     `mapstructure:"sinks"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configuration
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"` // caller override, tried first
	Fallbacks   []string      `mapstructure:"fallbacks"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Candidates returns the ordered model list: override first, then the
// fallback preference list, empties skipped.
func (l LLMConfig) Candidates() []string {
	var out []string
	for _, m := range append([]string{l.Model}, l.Fallbacks...) {
		if strings.TrimSpace(m) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Normalize applies defaults for unset LLM values.
func (l LLMConfig) Normalize() LLMConfig {
	if l.BaseURL == "" {
		l.BaseURL = "https://api.groq.com/openai/v1"
	}
	if len(l.Fallbacks) == 0 {
		l.Fallbacks = []string{
			"llama-3.3-70b-versatile",
			"llama-3.1-8b-instant",
			"moonshotai/kimi-k2-instruct-0905",
			"groq/compound",
		}
	}
	if l.Temperature == 0 {
		l.Temperature = 0.7
	}
	if l.MaxTokens <= 0 {
		l.MaxTokens = 2000
	}
	if l.Timeout <= 0 {
		l.Timeout = 60 * time.Second
	}
	return l
}

// SearchConfig contains web search settings
type SearchConfig struct {
	Provider      string        `mapstructure:"provider"` // tavily, serper; offline when no key
	TavilyAPIKey  string        `mapstructure:"tavily_api_key"`
	SerperAPIKey  string        `mapstructure:"serper_api_key"`
	MaxResults    int           `mapstructure:"max_results"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FetchPages    bool          `mapstructure:"fetch_pages"`
	FetchMaxChars int           `mapstructure:"fetch_max_chars"`
}

// Normalize applies defaults for unset search values.
func (s SearchConfig) Normalize() SearchConfig {
	if s.Provider == "" {
		s.Provider = "tavily"
	}
	if s.MaxResults <= 0 || s.MaxResults > 10 {
		s.MaxResults = 5
	}
	if s.Timeout <= 0 {
		s.Timeout = 20 * time.Second
	}
	if s.FetchMaxChars <= 0 {
		s.FetchMaxChars = 4000
	}
	return s
}

// SinksConfig contains credentials for forwarding targets
type SinksConfig struct {
	Slack  SlackConfig  `mapstructure:"slack"`
	Notion NotionConfig `mapstructure:"notion"`
	Drive  DriveConfig  `mapstructure:"drive"`
}

// SlackConfig contains the incoming-webhook target
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// NotionConfig contains the Notion API target
type NotionConfig struct {
	APIKey     string `mapstructure:"api_key"`
	DatabaseID string `mapstructure:"database_id"`
}

// DriveConfig contains the Google Drive upload target
type DriveConfig struct {
	AccessToken string `mapstructure:"access_token"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr returns host:port, or empty when redis is not configured.
func (r RedisConfig) Addr() string {
	if strings.TrimSpace(r.Host) == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DSN builds a postgres connection string, or empty when not configured.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	if strings.TrimSpace(p.Host) == "" || strings.TrimSpace(p.DBName) == "" {
		return ""
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// TelemetryConfig contains telemetry settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file (optional) and DEEPCHAT_* env vars
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "90s")
	v.SetDefault("server.address", ":10002")
	v.SetDefault("telemetry.enabled", true)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("DEEPCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// env-only operation is supported; only a present-but-broken file is fatal
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM = cfg.LLM.Normalize()
	cfg.Search = cfg.Search.Normalize()
	return &cfg, nil
}
