package kafka

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// reader - минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// commandApplier - разбор и выполнение команды корзины (см. Applier).
type commandApplier interface {
	Apply(ctx context.Context, raw []byte) error
}

// Consumer - обёртка над kafka.Reader + применение команд к корзине.
type Consumer struct {
	reader         reader
	applier        commandApplier
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer - конструктор. ReaderConfig() настроен на ручной коммит оффсетов.
func NewConsumer(cfg *ConsumerConfig, service ports.CartService, log ports.Logger) *Consumer {
	return newConsumer(kafka.NewReader(cfg.ReaderConfig()), NewApplier(service), cfg, log)
}

func newConsumer(r reader, applier commandApplier, cfg *ConsumerConfig, log ports.Logger) *Consumer {
	// Параметры по умолчанию (если не заданы в конфиге)
	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 5 * time.Second
	}

	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = 1 * time.Second
	}

	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	return &Consumer{
		reader:         r,
		applier:        applier,
		log:            log,
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		jitterRand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run - основной цикл:
// 1) читаем сообщение без авто-коммита;
// 2) команда применена или отклонена корзиной (нет товара, нет остатка) → CommitMessages;
// 3) не команда → лог и CommitMessages (пропускаем навсегда);
// 4) витрина/хранилище/таймаут → без коммита (повторная обработка, at-least-once).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.retryInitial

	for {
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		retry = c.retryInitial
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if shouldCommit := c.handleMessage(ctx, rc.Topic, &msg); shouldCommit {
			c.commitSafely(ctx, &msg)
		} else {
			// пауза перед повтором, чтобы не долбить витрину/хранилище
			_ = c.sleepWithBackoff(ctx, c.withJitterEqual(minDuration(c.retryInitial, 500*time.Millisecond)))
		}
	}
}

// Close - закрывает reader. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
