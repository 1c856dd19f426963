package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

// handleMessage обрабатывает одно сообщение и определяет, нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	opCtx := ctxmeta.WithSource(ctx, ctxmeta.SourceKafka)
	opCtx = ctxmeta.WithRequestID(opCtx, messageRequestID(msg))

	ctxTimeout, cancel := context.WithTimeout(opCtx, c.processTimeout)
	err := c.applier.Apply(ctxTimeout, msg.Value)
	cancel()

	if shouldCommit(err) {
		if err == nil {
			metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
			return true
		}
		op, kind := failureLabels(err)
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(opCtx, "command skipped offset=%d op=%s kind=%s: %v", msg.Offset, op, kind, err)
		return true
	}

	op, kind := failureLabels(err)
	metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
	c.log.Warnf(opCtx, "process failed offset=%d op=%s kind=%s: %v (will retry without commit)", msg.Offset, op, kind, err)
	return false
}

// failureLabels - операция и вид отказа для лога; невалидная команда до корзины не доходит.
func failureLabels(err error) (op, kind string) {
	if errors.Is(err, ErrInvalidCommand) {
		return "-", "invalid_command"
	}
	op = "-"
	if o, ok := domain.OpOf(err); ok {
		op = string(o)
	}
	return op, string(domain.KindOf(err))
}

// shouldCommit - отказы, которые не исправятся повтором, коммитим.
func shouldCommit(err error) bool {
	if err == nil || errors.Is(err, ErrInvalidCommand) {
		return true
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindOutOfStock:
		return true
	default:
		return false
	}
}

// messageRequestID - ключ сообщения, иначе координаты в топике.
func messageRequestID(msg *kafka.Message) string {
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	return fmt.Sprintf("kafka-%d-%d", msg.Partition, msg.Offset)
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual - половина задержки фиксирована, вторая половина случайная.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
