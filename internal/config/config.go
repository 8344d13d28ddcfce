package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel string

	NATSURL        string
	NATSSubject    string
	NATSQueueGroup string

	// One bot serves the pipeline: the intake monitor reads the source chat,
	// the pricer talks to the oracle channel and delivers reports.
	BotToken     string
	SourceChatID int64
	OracleChatID int64
	ReportChatID int64

	ExtractorURL    string
	ExtractorBotID  int
	ExtractorChatID string

	ExtractMaxAttempts    int
	ExtractInitialBackoff time.Duration
	ExtractMaxBackoff     time.Duration

	OracleTimeout   time.Duration
	SweepInterval   time.Duration
	DiscountPercent float64

	CatalogSourcesPath string

	MetricsPort string

	// The spreadsheet lookup bot is a separate identity with its own token.
	SearchBotToken string
	PriceBasePath  string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		NATSURL:        mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:    mustEnv("NATS_SUBJECT", "requests.inbound"),
		NATSQueueGroup: mustEnv("NATS_QUEUE_GROUP", "pricers"),

		BotToken:     mustEnv("TELEGRAM_BOT_TOKEN", ""),
		SourceChatID: mustEnvInt64("SOURCE_CHAT_ID", 0),
		OracleChatID: mustEnvInt64("ORACLE_CHAT_ID", 0),
		ReportChatID: mustEnvInt64("REPORT_CHAT_ID", 0),

		ExtractorURL:    mustEnv("EXTRACTOR_URL", "https://api.pro-talk.ru/api/v1.0/ask"),
		ExtractorBotID:  mustEnvInt("EXTRACTOR_BOT_ID", 0),
		ExtractorChatID: mustEnv("EXTRACTOR_CHAT_ID", "channel_monitor"),

		ExtractMaxAttempts:    mustEnvInt("EXTRACT_MAX_ATTEMPTS", 3),
		ExtractInitialBackoff: mustEnvDuration("EXTRACT_INITIAL_BACKOFF", 500*time.Millisecond),
		ExtractMaxBackoff:     mustEnvDuration("EXTRACT_MAX_BACKOFF", 5*time.Second),

		OracleTimeout:   mustEnvDuration("ORACLE_TIMEOUT", 30*time.Second),
		SweepInterval:   mustEnvDuration("SWEEP_INTERVAL", 5*time.Second),
		DiscountPercent: mustEnvFloat("DISCOUNT_PERCENT", 3),

		CatalogSourcesPath: mustEnv("CATALOG_SOURCES_PATH", "configs/catalog.yml"),

		MetricsPort: mustEnv("METRICS_PORT", "9090"),

		SearchBotToken: mustEnv("SEARCH_BOT_TOKEN", ""),
		PriceBasePath:  mustEnv("PRICE_BASE_PATH", "files/base.xlsx"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
