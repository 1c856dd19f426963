package ports

import "context"

// Notifier - приёмник пользовательских сообщений об ошибках. Fire-and-forget.
type Notifier interface {
	Error(ctx context.Context, message string)
}
