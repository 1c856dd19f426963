package ports

import "context"

// MessageConsumer - фоновый потребитель команд корзины (Kafka).
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
