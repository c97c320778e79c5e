package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRecipeLimit        = 3
	DefaultMessageCharLimit   = 4096
	DefaultPollTimeoutSeconds = 60
	DefaultMaxConcurrency     = 8
	DefaultSpoonacularBaseURL = "https://api.spoonacular.com"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	TelegramToken         string
	TelegramWebhookURL    string
	TelegramWebhookSecret string

	SpoonacularKey     string
	SpoonacularBaseURL string

	RedisURL string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Bot BotConfig
}

type BotConfig struct {
	RecipeLimit        int      `yaml:"recipe_limit"`
	MessageCharLimit   int      `yaml:"message_char_limit"`
	AllowedTags        []string `yaml:"allowed_tags"`
	PollTimeoutSeconds int      `yaml:"poll_timeout_seconds"`
	MaxConcurrency     int      `yaml:"max_concurrency"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		TelegramToken:            os.Getenv("TELEGRAM_TOKEN"),
		TelegramWebhookURL:       os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramWebhookSecret:    os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		SpoonacularKey:           os.Getenv("SPOONACULAR_KEY"),
		SpoonacularBaseURL:       os.Getenv("SPOONACULAR_BASE_URL"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "remy"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SpoonacularBaseURL == "" {
		cfg.SpoonacularBaseURL = DefaultSpoonacularBaseURL
	}

	cfg.SetBotDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Bot BotConfig `yaml:"bot"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Bot.RecipeLimit != 0 {
		c.Bot.RecipeLimit = yamlConfig.Bot.RecipeLimit
	}
	if yamlConfig.Bot.MessageCharLimit != 0 {
		c.Bot.MessageCharLimit = yamlConfig.Bot.MessageCharLimit
	}
	if len(yamlConfig.Bot.AllowedTags) > 0 {
		tags := make([]string, 0, len(yamlConfig.Bot.AllowedTags))
		for _, tag := range yamlConfig.Bot.AllowedTags {
			tags = append(tags, strings.ToLower(strings.TrimSpace(tag)))
		}
		c.Bot.AllowedTags = tags
	}
	if yamlConfig.Bot.PollTimeoutSeconds != 0 {
		c.Bot.PollTimeoutSeconds = yamlConfig.Bot.PollTimeoutSeconds
	}
	if yamlConfig.Bot.MaxConcurrency != 0 {
		c.Bot.MaxConcurrency = yamlConfig.Bot.MaxConcurrency
	}

	return nil
}

// SetBotDefaults fills zero values. An empty AllowedTags keeps the built-in
// vocabulary from the validation package.
func (c *Config) SetBotDefaults() {
	if c.Bot.RecipeLimit == 0 {
		c.Bot.RecipeLimit = DefaultRecipeLimit
	}
	if c.Bot.MessageCharLimit == 0 {
		c.Bot.MessageCharLimit = DefaultMessageCharLimit
	}
	if c.Bot.PollTimeoutSeconds == 0 {
		c.Bot.PollTimeoutSeconds = DefaultPollTimeoutSeconds
	}
	if c.Bot.MaxConcurrency == 0 {
		c.Bot.MaxConcurrency = DefaultMaxConcurrency
	}
}

// WebhookEnabled reports whether updates arrive by webhook instead of long polling.
func (c *Config) WebhookEnabled() bool {
	return c.TelegramWebhookURL != ""
}

// QueueEnabled reports whether commands are dispatched through the asynq queue.
func (c *Config) QueueEnabled() bool {
	return c.RedisURL != ""
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}

func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.SpoonacularKey == "" {
		return fmt.Errorf("SPOONACULAR_KEY is required")
	}
	if c.Bot.RecipeLimit < 0 {
		return fmt.Errorf("bot.recipe_limit must not be negative")
	}
	if c.Bot.MessageCharLimit < 0 {
		return fmt.Errorf("bot.message_char_limit must not be negative")
	}
	if c.WebhookEnabled() && c.TelegramWebhookSecret == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required when TELEGRAM_WEBHOOK_URL is set")
	}
	return nil
}
