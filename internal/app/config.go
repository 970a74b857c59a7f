package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the storefront service.
type Config struct {
	// HTTPAddr is the listen address of the REST API.
	HTTPAddr string
	// OpsAddr is the listen address for metrics and health probes.
	OpsAddr string

	// PostgresDSN switches storage from in-memory to PostgreSQL when set.
	PostgresDSN string
	// KafkaBrokers enables outbox publication when set (comma separated).
	KafkaBrokers string

	// External platform endpoints. Each falls back to a local stand-in
	// (static auth, in-memory blobs, log mailer) when left empty.
	AuthBaseURL string
	AuthAPIKey  string
	BlobBaseURL string
	BlobAPIKey  string
	MailBaseURL string
	MailAPIKey  string
}

// DefaultConfig returns the default listen addresses.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		OpsAddr:  ":9090",
	}
}

// LoadConfig reads settings from the environment. A .env file in the working
// directory is merged first when present.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := envValue("STOREFRONT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := envValue("STOREFRONT_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}

	cfg.PostgresDSN = envValue("STOREFRONT_POSTGRES_DSN")
	cfg.KafkaBrokers = envValue("STOREFRONT_KAFKA_BROKERS")

	cfg.AuthBaseURL = envValue("STOREFRONT_AUTH_URL")
	cfg.AuthAPIKey = envValue("STOREFRONT_AUTH_API_KEY")
	cfg.BlobBaseURL = envValue("STOREFRONT_BLOB_URL")
	cfg.BlobAPIKey = envValue("STOREFRONT_BLOB_API_KEY")
	cfg.MailBaseURL = envValue("STOREFRONT_MAIL_URL")
	cfg.MailAPIKey = envValue("STOREFRONT_MAIL_API_KEY")

	return cfg
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
