package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"recipe-analyzer/api/internal/scrape"
)

type Config struct {
	Port string
	Env  string

	GeminiAPIKey     string
	GeminiProModel   string
	GeminiFlashModel string
	OpenAIAPIKey     string
	OpenAIModel      string

	DatabaseURL    string
	AuditRetention time.Duration

	FetchTimeout    time.Duration
	ScrapeUserAgent string
}

// Production reports whether debugging fields are kept out of responses.
func (c *Config) Production() bool { return c.Env == "production" }

// GPTEnabled is true when an OpenAI key was supplied.
func (c *Config) GPTEnabled() bool { return c.OpenAIAPIKey != "" }

func mustEnv(k string) (string, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return "", fmt.Errorf("missing required env %s", k)
	}
	return v, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("env %s: must not be negative", k)
	}
	return d, nil
}

func Load() (*Config, error) {
	geminiKey, err := mustEnv("GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}
	retention, err := getDuration("AUDIT_RETENTION", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getDuration("FETCH_TIMEOUT", scrape.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		GeminiAPIKey:     geminiKey,
		GeminiProModel:   getEnv("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		GeminiFlashModel: getEnv("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AuditRetention: retention,

		FetchTimeout:    fetchTimeout,
		ScrapeUserAgent: getEnv("SCRAPE_USER_AGENT", scrape.DefaultUserAgent),
	}, nil
}
