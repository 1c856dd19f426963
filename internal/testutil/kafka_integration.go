//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup - уникальные topic/group для одного теста: "<base>-<hex>".
func UniqueTopicAndGroup(base string) (topic, group string) {
	topic = base + "-" + UniqSuffix()
	return topic, topic + "-group"
}

// EnsureTopic - создаёт топик с одной партицией через контроллер кластера и ждёт его в метаданных.
// broker: "host:port", "PLAINTEXT://host:port" или список через запятую (берётся первый).
func EnsureTopic(ctx context.Context, broker, topic string) error {
	addr := bootstrapAddr(broker)

	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}

	admin, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) &&
		!strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}

	return waitTopic(ctx, addr, topic, 5*time.Second)
}

// ProduceCommands - пишет команды корзины в топик по одной, с подтверждением от всех реплик.
func ProduceCommands(ctx context.Context, brokers []string, topic string, commands ...string) error {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	defer w.Close()

	for _, cmd := range commands {
		if err := w.WriteMessages(ctx, kafka.Message{Value: []byte(cmd)}); err != nil {
			return fmt.Errorf("write %s: %w", cmd, err)
		}
	}
	return nil
}

func bootstrapAddr(raw string) string {
	first := strings.TrimSpace(strings.Split(raw, ",")[0])
	if strings.Contains(first, "://") {
		if u, err := url.Parse(first); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return first
}

func waitTopic(ctx context.Context, broker, topic string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			parts, perr := conn.ReadPartitions(topic)
			_ = conn.Close()
			if perr == nil && len(parts) > 0 {
				return nil
			}
			err = perr
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %w", topic, errors.Join(ctx.Err(), lastErr))
		case <-time.After(200 * time.Millisecond):
		}
	}
}
