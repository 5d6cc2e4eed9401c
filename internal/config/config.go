package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iforaa/quartergate/pkg/transcript"
	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to each component constructor.
type Config struct {
	DatabaseURL string `validate:"required"`
	RedisURL    string

	CalendarProvider string `validate:"oneof=nasdaq finnhub"`
	FinnhubAPIKey    string `validate:"required_if=CalendarProvider finnhub"`

	NinjasURL   string `validate:"required,url"`
	NinjasToken string `validate:"required"`

	LLMProvider string `validate:"oneof=openai anthropic gemini"`
	LLMModel    string
	LLMAPIKey   string `validate:"required"`

	BlobProvider    string `validate:"oneof=worker supabase"`
	DataStoreURL    string `validate:"required_if=BlobProvider worker"`
	SupabaseURL     string `validate:"required_if=BlobProvider supabase"`
	SupabaseKey     string `validate:"required_if=BlobProvider supabase"`
	SupabaseBucket  string `validate:"required_if=BlobProvider supabase"`
	TelegramToken   string `validate:"required"`
	TelegramChannel string `validate:"required"`

	DaysAgo     int `validate:"gte=0"`
	MaxSymbols  int `validate:"gte=1"`
	TickerDelay time.Duration
	Schedule    string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDatabaseURL is the subset the read API needs.
func LoadDatabaseURL() (string, error) {
	godotenv.Load()

	dsn := databaseURL()
	if dsn == "" {
		return "", fmt.Errorf("set DATABASE_URL or NEON_HOST")
	}
	return dsn, nil
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      databaseURL(),
		RedisURL:         os.Getenv("REDIS_URL"),
		CalendarProvider: getEnv("CALENDAR_PROVIDER", "nasdaq"),
		FinnhubAPIKey:    os.Getenv("FINNHUB_API_KEY"),
		NinjasURL:        getEnv("API_NINJAS_URL", transcript.DefaultNinjasURL),
		NinjasToken:      os.Getenv("API_NINJAS_TOKEN"),
		LLMProvider:      getEnv("LLM_PROVIDER", "openai"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		BlobProvider:     getEnv("BLOB_PROVIDER", "worker"),
		DataStoreURL:     os.Getenv("DATA_STORE_URL"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		SupabaseBucket:   getEnv("SUPABASE_BUCKET", "transcripts"),
		TelegramToken:    os.Getenv("TG_BOT_TOKEN"),
		TelegramChannel:  os.Getenv("TG_CHANNEL_ID"),
		Schedule:         strings.TrimSpace(os.Getenv("SCHEDULE")),
	}
	cfg.LLMAPIKey = llmAPIKey(cfg.LLMProvider)

	var err error
	if cfg.DaysAgo, err = getInt("DAYS_AGO", 1); err != nil {
		return nil, err
	}
	if cfg.MaxSymbols, err = getInt("MAX_SYMBOLS", 5); err != nil {
		return nil, err
	}
	if cfg.TickerDelay, err = getDuration("TICKER_DELAY", 5*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// NEON_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := os.Getenv("NEON_HOST")
	if host == "" {
		return ""
	}
	if port := os.Getenv("NEON_PORT"); port != "" {
		host = net.JoinHostPort(host, port)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("NEON_USER"), os.Getenv("NEON_PASSWORD")),
		Host:     host,
		Path:     "/" + os.Getenv("NEON_DB_NAME"),
		RawQuery: "sslmode=require",
	}
	return u.String()
}

func llmAPIKey(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		if key := os.Getenv("OPENAI_TOKEN"); key != "" {
			return key
		}
		return os.Getenv("OPENAI_API_KEY")
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getDuration accepts Go durations ("5s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
