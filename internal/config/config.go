// Package config loads service settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Push drivers
const (
	PushDriverFCM  = "fcm"
	PushDriverNATS = "nats"
	PushDriverLog  = "log"
)

// Config holds all settings of the gateway.
type Config struct {
	Port        int    `mapstructure:"PORT"`
	MetricsPort int    `mapstructure:"METRICS_PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	OTLPAddress string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LedgerAddress         string        `mapstructure:"LEDGER_ADDRESS"`
	LedgerDomain          string        `mapstructure:"LEDGER_DOMAIN"`
	LedgerAssetID         string        `mapstructure:"LEDGER_ASSET_ID"`
	LedgerAdminAccount    string        `mapstructure:"LEDGER_ADMIN_ACCOUNT"`
	LedgerAdminPrivateKey string        `mapstructure:"LEDGER_ADMIN_PRIVATE_KEY"`
	LedgerSignatureScheme string        `mapstructure:"LEDGER_SIGNATURE_SCHEME"`
	LedgerSubmitTimeout   time.Duration `mapstructure:"LEDGER_SUBMIT_TIMEOUT"`
	LedgerQueryTimeout    time.Duration `mapstructure:"LEDGER_QUERY_TIMEOUT"`

	PushDriver              string        `mapstructure:"PUSH_DRIVER"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	NATSUrl                 string        `mapstructure:"NATS_URL"`
	NATSPushSubject         string        `mapstructure:"NATS_PUSH_SUBJECT"`
	NotifyTimeout           time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":                        8080,
	"METRICS_PORT":                9090,
	"GIN_MODE":                    "release",
	"SERVICE_NAME":                "hamiot-gateway",
	"ENVIRONMENT":                 "development",
	"LOG_LEVEL":                   "info",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",

	"LEDGER_ADDRESS":           "localhost:50051",
	"LEDGER_DOMAIN":            "test",
	"LEDGER_ASSET_ID":          "hamiot#test",
	"LEDGER_ADMIN_ACCOUNT":     "admin@test",
	"LEDGER_ADMIN_PRIVATE_KEY": "",
	"LEDGER_SIGNATURE_SCHEME":  ledger.SchemeEd25519Sha3,
	"LEDGER_SUBMIT_TIMEOUT":    "1s",
	"LEDGER_QUERY_TIMEOUT":     "750ms",

	"PUSH_DRIVER":               PushDriverFCM,
	"FIREBASE_CREDENTIALS_FILE": "",
	"NATS_URL":                  "nats://localhost:4222",
	"NATS_PUSH_SUBJECT":         "hamiot.push",
	"NOTIFY_TIMEOUT":            "5s",
}

// Load reads the configuration. Values from the process environment win over
// a .env file, which wins over the defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.LedgerAddress == "" {
		errs = append(errs, errors.New("LEDGER_ADDRESS is required"))
	}
	if c.LedgerAssetID == "" {
		errs = append(errs, errors.New("LEDGER_ASSET_ID is required"))
	}
	if c.LedgerAdminPrivateKey == "" {
		errs = append(errs, errors.New("LEDGER_ADMIN_PRIVATE_KEY is required"))
	}
	switch c.LedgerSignatureScheme {
	case ledger.SchemeEd25519Sha3, ledger.SchemeEd25519:
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_SIGNATURE_SCHEME %q", c.LedgerSignatureScheme))
	}
	if c.LedgerSubmitTimeout <= 0 || c.LedgerQueryTimeout <= 0 || c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	switch c.PushDriver {
	case PushDriverFCM, PushDriverNATS, PushDriverLog:
	default:
		errs = append(errs, fmt.Errorf("unknown PUSH_DRIVER %q", c.PushDriver))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
