package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buddybudget/wealth_backend/utils"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	EventsTransportNone   = "none"
	EventsTransportPubSub = "pubsub"
	EventsTransportAMQP   = "amqp"
)

// Settings collects the service configuration read from the environment.
type Settings struct {
	Port            string
	Env             string
	DBDriver        string
	SQLitePath      string
	RedisAddress    string
	Timezone        string
	DefaultCurrency string
	EventsTransport string
	PubSubTopic     string
	AMQPURL         string
	AMQPExchange    string
	SkipMigrations  bool
}

func LoadSettings() Settings {
	port := getEnv("API_PORT", "")
	if port == "" {
		port = getEnv("PORT", "8080")
	}
	return Settings{
		Port:            port,
		Env:             getEnv("GO_ENV", "development"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		SQLitePath:      getEnv("SQLITE_PATH", "wealth.db"),
		RedisAddress:    getEnv("REDIS_ADDRESS", ""),
		Timezone:        getEnv("WEALTH_TIMEZONE", "UTC"),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),
		EventsTransport: strings.ToLower(getEnv("EVENTS_TRANSPORT", EventsTransportNone)),
		PubSubTopic:     getEnv("PUBSUB_TOPIC", "wealth-ledger-events"),
		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "wealth.ledger"),
		SkipMigrations:  boolFromEnv("SKIP_MIGRATIONS"),
	}
}

func (s Settings) Validate() error {
	var errs []error
	if s.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	switch s.DBDriver {
	case DriverMySQL:
	case DriverSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", s.DBDriver))
	}
	if _, err := utils.LoadLocation(s.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("WEALTH_TIMEZONE %q: %w", s.Timezone, err))
	}
	if _, err := utils.NormalizeCurrency(s.DefaultCurrency, ""); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY: %w", err))
	}
	switch s.EventsTransport {
	case EventsTransportNone:
	case EventsTransportPubSub:
		if s.PubSubTopic == "" {
			errs = append(errs, errors.New("PUBSUB_TOPIC is required when EVENTS_TRANSPORT=pubsub"))
		}
	case EventsTransportAMQP:
		if s.AMQPURL == "" {
			errs = append(errs, errors.New("AMQP_URL is required when EVENTS_TRANSPORT=amqp"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_TRANSPORT %q is not supported", s.EventsTransport))
	}
	return errors.Join(errs...)
}

func (s Settings) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
