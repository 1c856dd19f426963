package ports

import "context"

// SnapshotStore - постоянное хранилище снапшота корзины: один строковый слот на ключ.
// Set перезаписывает слот целиком и идемпотентен.
type SnapshotStore interface {
	// Get - (value, true, nil) если слот есть; ("", false, nil) если его нет.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
