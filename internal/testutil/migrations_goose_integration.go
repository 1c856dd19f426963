//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver name = "pgx"
	"github.com/pressly/goose/v3"

	"github.com/Gunvolt24/shoecart/migrations"
)

// ApplyMigrationsGoose применяет вшитые миграции (пакет migrations) к базе по DSN.
// Через Provider, а не глобальный goose.Up: тесты с контейнерами идут параллельно.
func ApplyMigrationsGoose(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
