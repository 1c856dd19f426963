package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

var (
	_ ports.Notifier = (*LogSink)(nil)
	_ ports.Notifier = (*KafkaSink)(nil)
	_ ports.Notifier = Fanout(nil)
)

// LogSink - уведомления в лог сервиса.
type LogSink struct {
	log ports.Logger
}

func NewLogSink(log ports.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Error(ctx context.Context, message string) {
	s.log.Warnf(ctx, "notification: %s", message)
	metrics.NotificationsSent.WithLabelValues("log", "ok").Inc()
}

// Notification - формат сообщения в топике уведомлений.
type Notification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Time      time.Time `json:"time"`
}

// messageWriter - часть kafka.Writer, нужная синку.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink - публикует уведомления в топик. Ошибки публикации только логируются.
type KafkaSink struct {
	writer  messageWriter
	log     ports.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewKafkaWriter - writer топика уведомлений: синхронный, ключ балансирует по партициям.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func NewKafkaSink(writer messageWriter, log ports.Logger, timeout time.Duration) *KafkaSink {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &KafkaSink{writer: writer, log: log, timeout: timeout, now: time.Now}
}

func (s *KafkaSink) Error(ctx context.Context, message string) {
	n := Notification{Level: "error", Message: message, Time: s.now().UTC()}
	n.RequestID, _ = ctxmeta.RequestIDFromContext(ctx)
	n.Source, _ = ctxmeta.SourceFromContext(ctx)

	payload, err := json.Marshal(n)
	if err != nil {
		s.log.Errorf(ctx, "notification marshal failed: %v", err)
		metrics.NotificationsSent.WithLabelValues("kafka", "error").Inc()
		return
	}

	// отмена запроса не должна терять уведомление
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(n.RequestID), Value: payload}); err != nil {
		s.log.Errorf(ctx, "notification publish failed: %v", err)
		metrics.NotificationsSent.WithLabelValues("kafka", "error").Inc()
		return
	}
	metrics.NotificationsSent.WithLabelValues("kafka", "ok").Inc()
}

func (s *KafkaSink) Close() error { return s.writer.Close() }

// Fanout - рассылает уведомление во все синки по порядку.
type Fanout []ports.Notifier

func (f Fanout) Error(ctx context.Context, message string) {
	for _, sink := range f {
		sink.Error(ctx, message)
	}
}
