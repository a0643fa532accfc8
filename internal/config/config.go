package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Matching MatchingConfig
	Pricing  PricingConfig
	Ledger   LedgerConfig
	Order    OrderConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type MatchingConfig struct {
	RecentDepartureWindow time.Duration
	MaxTravelerCandidates int
	MaxPartnerCandidates  int
	MaxRequestPartners    int
	DefaultSearchRadiusKm float64
}

type PricingConfig struct {
	// TablePath points to an optional YAML fee table; empty uses the built-in rates.
	TablePath string
}

type LedgerConfig struct {
	DefaultCurrency   string
	NumberMaxAttempts int
}

type OrderConfig struct {
	NumberMaxAttempts int
	WriteMaxAttempts  int
	WriteTimeout      time.Duration
}

type EventsConfig struct {
	Driver        string
	KafkaBrokers  []string
	KafkaTopic    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

const (
	EventsDriverNone  = "none"
	EventsDriverKafka = "kafka"
	EventsDriverRedis = "redis"
)

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "courier")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "courier")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MATCHING_RECENT_DEPARTURE_WINDOW", "168h")
	v.SetDefault("MATCHING_MAX_TRAVELER_CANDIDATES", 4)
	v.SetDefault("MATCHING_MAX_PARTNER_CANDIDATES", 4)
	v.SetDefault("MATCHING_MAX_REQUEST_PARTNERS", 5)
	v.SetDefault("MATCHING_DEFAULT_RADIUS_KM", 10.0)
	v.SetDefault("PRICING_TABLE_PATH", "")
	v.SetDefault("LEDGER_DEFAULT_CURRENCY", "ETB")
	v.SetDefault("LEDGER_NUMBER_MAX_ATTEMPTS", 5)
	v.SetDefault("ORDER_NUMBER_MAX_ATTEMPTS", 5)
	v.SetDefault("ORDER_WRITE_MAX_ATTEMPTS", 3)
	v.SetDefault("ORDER_WRITE_TIMEOUT", "5s")
	v.SetDefault("EVENTS_DRIVER", EventsDriverNone)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "courier.events")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CHANNEL_PREFIX", "courier")

	requestTimeout, err := time.ParseDuration(v.GetString("SERVER_REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_REQUEST_TIMEOUT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	departureWindow, err := time.ParseDuration(v.GetString("MATCHING_RECENT_DEPARTURE_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("parsing MATCHING_RECENT_DEPARTURE_WINDOW: %w", err)
	}

	writeTimeout, err := time.ParseDuration(v.GetString("ORDER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_WRITE_TIMEOUT: %w", err)
	}

	driver := strings.ToLower(v.GetString("EVENTS_DRIVER"))
	switch driver {
	case EventsDriverNone, EventsDriverKafka, EventsDriverRedis:
	default:
		return nil, fmt.Errorf("unsupported EVENTS_DRIVER %q", driver)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			RequestTimeout: requestTimeout,
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Matching: MatchingConfig{
			RecentDepartureWindow: departureWindow,
			MaxTravelerCandidates: v.GetInt("MATCHING_MAX_TRAVELER_CANDIDATES"),
			MaxPartnerCandidates:  v.GetInt("MATCHING_MAX_PARTNER_CANDIDATES"),
			MaxRequestPartners:    v.GetInt("MATCHING_MAX_REQUEST_PARTNERS"),
			DefaultSearchRadiusKm: v.GetFloat64("MATCHING_DEFAULT_RADIUS_KM"),
		},
		Pricing: PricingConfig{
			TablePath: v.GetString("PRICING_TABLE_PATH"),
		},
		Ledger: LedgerConfig{
			DefaultCurrency:   v.GetString("LEDGER_DEFAULT_CURRENCY"),
			NumberMaxAttempts: v.GetInt("LEDGER_NUMBER_MAX_ATTEMPTS"),
		},
		Order: OrderConfig{
			NumberMaxAttempts: v.GetInt("ORDER_NUMBER_MAX_ATTEMPTS"),
			WriteMaxAttempts:  v.GetInt("ORDER_WRITE_MAX_ATTEMPTS"),
			WriteTimeout:      writeTimeout,
		},
		Events: EventsConfig{
			Driver:        driver,
			KafkaBrokers:  splitList(v.GetString("KAFKA_BROKERS")),
			KafkaTopic:    v.GetString("KAFKA_TOPIC"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			RedisPrefix:   v.GetString("REDIS_CHANNEL_PREFIX"),
		},
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
