package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // "first" | "last" (по умолчанию)

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
}

// ReaderConfig - настройки kafka.Reader с ручным коммитом оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
