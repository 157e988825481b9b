package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source   SourceConfig   `yaml:"source"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Page     PageConfig     `yaml:"page"`
	APIs     APIsConfig     `yaml:"apis"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type SourceConfig struct {
	Kind       string `yaml:"kind" env:"VOICENAV_SOURCE"`
	HTTPAddr   string `yaml:"http_addr" env:"VOICENAV_HTTP_ADDR"`
	Dir        string `yaml:"dir" env:"VOICENAV_DIR"`
	SampleRate int    `yaml:"sample_rate"`
	QueueSize  int    `yaml:"queue_size"`
	// Listen starts the assistant listening instead of waiting for POST /listen.
	Listen bool `yaml:"listen"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Language string `yaml:"language"`
}

type PageConfig struct {
	Start       string `yaml:"start"`
	BaseURL     string `yaml:"base_url" env:"VOICENAV_BASE_URL"`
	OpenBrowser bool   `yaml:"open_browser"`
	LookupDays  int    `yaml:"lookup_days"`
}

type APIsConfig struct {
	PolygonAPIKey string `yaml:"polygon_api_key" env:"POLYGON_API_KEY"`
	TrendingDate  string `yaml:"trending_date"`
	QuotesURL     string `yaml:"quotes_url"`
	TrendingURL   string `yaml:"trending_url"`
	PolygonURL    string `yaml:"polygon_url"`
	DogImagesURL  string `yaml:"dog_images_url"`
	DogBreedsURL  string `yaml:"dog_breeds_url"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" env:"PUSHOVER_TOKEN"`
	UserKey string `yaml:"user_key" env:"PUSHOVER_USER_KEY"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"VOICENAV_LOG_LEVEL"`
	Format string `yaml:"format"`
	// File, when set, receives the log through a rotating writer.
	File string `yaml:"file" env:"VOICENAV_LOG_FILE"`
}

// Load reads the YAML file at path, applies environment overrides and fills
// in defaults. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = "http"
	}
	if c.Source.HTTPAddr == "" {
		c.Source.HTTPAddr = ":8080"
	}
	if c.Source.Dir == "" {
		c.Source.Dir = "./utterances"
	}
	if c.Source.SampleRate == 0 {
		c.Source.SampleRate = 16000
	}
	if c.Source.QueueSize == 0 {
		c.Source.QueueSize = 10
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Page.Start == "" {
		c.Page.Start = "home"
	}
	if c.Page.BaseURL == "" {
		c.Page.BaseURL = "http://localhost:5500"
	}
	if c.Page.LookupDays == 0 {
		c.Page.LookupDays = 30
	}
	if c.APIs.TrendingDate == "" {
		c.APIs.TrendingDate = "2022-04-03"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case "http", "dir", "microphone":
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	switch c.Page.Start {
	case "home", "stocks", "dogs":
	default:
		return fmt.Errorf("unknown start page %q", c.Page.Start)
	}
	if c.Page.LookupDays < 0 {
		return fmt.Errorf("lookup_days must be positive, got %d", c.Page.LookupDays)
	}
	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		return fmt.Errorf("pushover enabled without token and user_key")
	}
	return nil
}
