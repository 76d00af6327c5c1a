package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Optional capabilities. Each one left empty degrades its pipeline stage.
	DatabaseURL     string `yaml:"database_url"`
	RedisURL        string `yaml:"redis_url"`
	ApifyToken      string `yaml:"apify_api_token"`
	ApifyBaseURL    string `yaml:"apify_base_url"`
	AnthropicKey    string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseKey     string `yaml:"supabase_service_role_key"`
	SupabaseBucket  string `yaml:"supabase_bucket"`
	BrowserFallback bool   `yaml:"browser_fallback"`

	// APIKey protects the HTTP API with a bearer token when set
	APIKey string `yaml:"api_key"`

	DiscordToken     string `yaml:"discord_token"`
	DiscordChannelID string `yaml:"discord_channel_id"`

	ImageCheckSchedule string `yaml:"image_check_schedule"`
	WorkerConcurrency  int    `yaml:"worker_concurrency"`

	MetadataTimeout time.Duration `yaml:"metadata_timeout"`
	ScrapeTimeout   time.Duration `yaml:"scrape_timeout"`
	ImageTimeout    time.Duration `yaml:"image_timeout"`
	SummaryTimeout  time.Duration `yaml:"summary_timeout"`
}

const (
	DefaultPort           = "3000"
	DefaultBucket         = "sift-assets"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultApifyBaseURL   = "https://api.apify.com"
)

// Load reads the optional YAML file, then the environment, then flags.
// Later sources win.
func Load() (*Config, error) {
	configPath := os.Getenv("SIFT_CONFIG")

	fs := flag.CommandLine
	port := fs.String("port", "", "Server port")
	logLevel := fs.String("log-level", "", "Log level")
	fs.StringVar(&configPath, "config", configPath, "Path to YAML config file")
	if !fs.Parsed() {
		fs.Parse(os.Args[1:])
	}

	config, err := LoadFrom(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}

	if *port != "" {
		config.Port = *port
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	return config, nil
}

// LoadFrom builds a Config from an optional YAML file and an environment
// lookup function
func LoadFrom(path string, getenv func(string) string) (*Config, error) {
	config := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	env := envReader{getenv: getenv}
	env.str(&config.Port, "PORT")
	env.str(&config.LogLevel, "LOG_LEVEL")
	env.str(&config.LogFormat, "LOG_FORMAT")
	env.str(&config.DatabaseURL, "DATABASE_URL")
	env.str(&config.RedisURL, "REDIS_URL")
	env.str(&config.ApifyToken, "APIFY_API_TOKEN")
	env.str(&config.ApifyBaseURL, "APIFY_BASE_URL")
	env.str(&config.AnthropicKey, "ANTHROPIC_API_KEY")
	env.str(&config.AnthropicModel, "ANTHROPIC_MODEL")
	env.str(&config.SupabaseURL, "SUPABASE_URL")
	env.str(&config.SupabaseKey, "SUPABASE_SERVICE_ROLE_KEY")
	env.str(&config.SupabaseBucket, "SUPABASE_BUCKET")
	env.str(&config.APIKey, "API_KEY")
	env.str(&config.DiscordToken, "DISCORD_TOKEN")
	env.str(&config.DiscordChannelID, "DISCORD_CHANNEL_ID")
	env.str(&config.ImageCheckSchedule, "IMAGE_CHECK_SCHEDULE")
	env.boolean(&config.BrowserFallback, "BROWSER_FALLBACK")
	env.integer(&config.WorkerConcurrency, "WORKER_CONCURRENCY")
	env.duration(&config.MetadataTimeout, "METADATA_TIMEOUT")
	env.duration(&config.ScrapeTimeout, "SCRAPE_TIMEOUT")
	env.duration(&config.ImageTimeout, "IMAGE_TIMEOUT")
	env.duration(&config.SummaryTimeout, "SUMMARY_TIMEOUT")

	if env.err != nil {
		return nil, env.err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Port:               DefaultPort,
		LogLevel:           "info",
		LogFormat:          "text",
		ApifyBaseURL:       DefaultApifyBaseURL,
		AnthropicModel:     DefaultAnthropicModel,
		SupabaseBucket:     DefaultBucket,
		ImageCheckSchedule: "@every 6h",
		WorkerConcurrency:  4,
		MetadataTimeout:    15 * time.Second,
		ScrapeTimeout:      180 * time.Second,
		ImageTimeout:       30 * time.Second,
		SummaryTimeout:     120 * time.Second,
	}
}

type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(dst *string, key string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) boolean(dst *bool, key string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) integer(dst *int, key string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) duration(dst *time.Duration, key string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

// ScraperEnabled reports whether a live Apify token is configured
func (c *Config) ScraperEnabled() bool { return c.ApifyToken != "" }

// SummarizerEnabled reports whether a model key is configured
func (c *Config) SummarizerEnabled() bool { return c.AnthropicKey != "" }

// StorageEnabled reports whether image re-hosting can run
func (c *Config) StorageEnabled() bool { return c.SupabaseURL != "" && c.SupabaseKey != "" }

// StoragePublicBase is the URL prefix of re-hosted images
func (c *Config) StoragePublicBase() string {
	if c.SupabaseURL == "" {
		return ""
	}
	return c.SupabaseURL + "/storage/v1/object/public/" + c.SupabaseBucket + "/"
}

// ValidateForBot ensures all required fields for bot service are present
func (c *Config) ValidateForBot() error {
	if c.DiscordToken == "" {
		return errors.New("environment variable DISCORD_TOKEN is required for bot service")
	}
	return nil
}

// ValidateForWorker ensures all required fields for worker service are present
func (c *Config) ValidateForWorker() error {
	if c.DatabaseURL == "" {
		return errors.New("environment variable DATABASE_URL is required for worker service")
	}
	if c.RedisURL == "" {
		return errors.New("environment variable REDIS_URL is required for worker service")
	}
	if !c.StorageEnabled() {
		return errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for worker service")
	}
	return nil
}

// ValidateForAPI ensures all required fields for API service are present.
// Every capability is optional; only the port must be usable.
func (c *Config) ValidateForAPI() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	return nil
}
