package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Retry      RetryConfig      `yaml:"retry"`
	Cache      CacheConfig      `yaml:"cache"`
	Chat       ChatConfig       `yaml:"chat"`
	AI         AIConfig         `yaml:"ai"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	OutputDir  string           `yaml:"output_dir"`
}

type BackendConfig struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	HealthTimeout     time.Duration `yaml:"health_timeout" validate:"gt=0"`
	RequestTimeout    time.Duration `yaml:"request_timeout" validate:"gt=0"`
	Model             string        `yaml:"model" validate:"required"`
	AdditionalPrompt  string        `yaml:"additional_prompt"`
	AuthToken         string        `yaml:"auth_token"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" validate:"gte=0"`
	BaseDelay  time.Duration `yaml:"base_delay" validate:"gte=0"`
	MaxDelay   time.Duration `yaml:"max_delay" validate:"gte=0"`
	Multiplier float64       `yaml:"multiplier" validate:"gte=1"`
}

type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" validate:"gte=0"`
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
}

type ChatConfig struct {
	Responder  string        `yaml:"responder" validate:"oneof=template backend gemini openai"`
	SessionTTL time.Duration `yaml:"session_ttl" validate:"gte=0"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	Model        string `yaml:"model"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromEmail  string `yaml:"from_email" validate:"omitempty,email"`
	ToEmail    string `yaml:"to_email" validate:"omitempty,email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.Username != "" && e.ToEmail != ""
}

type MonitoringConfig struct {
	HealthPort int    `yaml:"health_port" validate:"gte=0,lte=65535"`
	Schedule   string `yaml:"schedule"`
}

type LoggingConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Production bool   `yaml:"production"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (default config.yaml).
// A missing file is fine; every setting has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	return LoadFile(configFile)
}

// LoadFile is Load without the .env step, for an explicit path.
func LoadFile(configFile string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration built only from defaults and the environment.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	// BACKEND_URL always wins so one deployment knob selects the backend.
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if c.Backend.AuthToken == "" {
		c.Backend.AuthToken = os.Getenv("BACKEND_AUTH_TOKEN")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:5000"
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.HealthTimeout == 0 {
		c.Backend.HealthTimeout = 5 * time.Second
	}
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = 60 * time.Second
	}
	if c.Backend.Model == "" {
		c.Backend.Model = "gemini-1.5-flash"
	}
	if c.Backend.AdditionalPrompt == "" {
		c.Backend.AdditionalPrompt = "Please provide a comprehensive analysis suitable for quick understanding and learning."
	}

	if c.Retry == (RetryConfig{}) {
		c.Retry = RetryConfig{
			MaxRetries: 3,
			BaseDelay:  2 * time.Second,
			MaxDelay:   10 * time.Second,
			Multiplier: 2,
		}
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 2 * time.Second
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 10 * time.Second
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = 2
	}

	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 100
	}

	if c.Chat.Responder == "" {
		c.Chat.Responder = "template"
	}
	if c.Chat.SessionTTL == 0 {
		c.Chat.SessionTTL = time.Hour
	}

	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.OpenAIModel == "" {
		c.AI.OpenAIModel = "gpt-4o-mini"
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}

	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Monitoring.Schedule == "" {
		c.Monitoring.Schedule = "0 */5 * * * *" // every five minutes
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.OutputDir == "" {
		c.OutputDir = "reports"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s is invalid (rule %q, value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	switch c.Chat.Responder {
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("Gemini API key is required for the gemini responder (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required for the openai responder (set OPENAI_API_KEY or ai.openai_api_key)")
		}
	}

	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return fmt.Errorf("retry.base_delay (%s) must not exceed retry.max_delay (%s)", c.Retry.BaseDelay, c.Retry.MaxDelay)
	}
	return nil
}
