package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shoecart/internal/ports"
)

// Проверка, что SnapshotRepository удовлетворяет интерфейсу ports.SnapshotStore.
var _ ports.SnapshotStore = (*SnapshotRepository)(nil)

// SnapshotRepository - слот снапшота корзины в таблице cart_snapshots (pgxpool).
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository - конструктор SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Get - значение слота; отсутствие строки не ошибка (found=false).
func (r *SnapshotRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM cart_snapshots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select snapshot: %w", err)
	}
	return value, true, nil
}

// Set - идемпотентная перезапись слота (upsert по key).
func (r *SnapshotRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("snapshot key is required")
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO cart_snapshots (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
