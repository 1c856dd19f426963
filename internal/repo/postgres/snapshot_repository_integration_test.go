//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	pgrepo "github.com/Gunvolt24/shoecart/internal/repo/postgres"
	"github.com/Gunvolt24/shoecart/internal/testutil"
	"github.com/Gunvolt24/shoecart/pkg/validate"
)

func startRepo(t *testing.T) (*pgrepo.SnapshotRepository, *pgxpool.Pool) {
	t.Helper()

	// длинный контекст - только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	return pgrepo.NewSnapshotRepository(pg.Pool), pg.Pool
}

// 1) Пустой слот и запись/чтение снапшота
func TestSnapshotRepo_SetAndGet_TC(t *testing.T) {
	t.Parallel()
	repo, _ := startRepo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := testutil.UniqueKey()

	_, found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	cart := testutil.MakeCart(3)
	raw, err := validate.EncodeSnapshot(cart)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, key, raw))

	got, found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, raw, got)

	decoded, err := validate.DecodeSnapshot(ctx, validate.NewSnapshotValidator(), []byte(got))
	require.NoError(t, err)
	require.True(t, decoded.Equal(cart))
}

// 2) Повторный Set перезаписывает слот, а не добавляет строку
func TestSnapshotRepo_Set_Overwrites_TC(t *testing.T) {
	t.Parallel()
	repo, pool := startRepo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := testutil.UniqueKey()
	require.NoError(t, repo.Set(ctx, key, `[{"id":1,"title":"a","price":"1","image":"","amount":1}]`))
	require.NoError(t, repo.Set(ctx, key, `[]`))

	got, found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, got)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM cart_snapshots WHERE key = $1`, key).Scan(&rows))
	require.Equal(t, 1, rows)
}

// 3) Повторный прогон миграций - no-op
func TestSnapshotRepo_MigrateIdempotent_TC(t *testing.T) {
	t.Parallel()
	_, pool := startRepo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	applied, err := pgrepo.Migrate(ctx, pool)
	require.NoError(t, err)
	require.Zero(t, applied)
}
