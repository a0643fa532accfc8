package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"courier/internal/config"
)

// New builds the publisher selected by EVENTS_DRIVER.
func New(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	case config.EventsDriverRedis:
		return NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case config.EventsDriverNone, "":
		return NopPublisher{}, nil
	}
	return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
}
