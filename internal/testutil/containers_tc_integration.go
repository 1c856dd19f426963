//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Образы контейнеров для интеграционных тестов.
const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"
)

// tcLogger - общий логгер жизненного цикла контейнеров.
var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

// lifecycleHooks - по строке в лог на каждом этапе жизни контейнера.
func lifecycleHooks(l *log.Logger) tc.ContainerLifecycleHooks {
	stage := func(name string) []tc.ContainerHook {
		return []tc.ContainerHook{func(_ context.Context, c tc.Container) error {
			l.Printf("%s id=%s", name, shortID(c.GetContainerID()))
			return nil
		}}
	}
	return tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{func(_ context.Context, req tc.ContainerRequest) error {
			l.Printf("creating image=%s", req.Image)
			return nil
		}},
		PostStarts:     stage("started"),
		PostReadies:    stage("ready"),
		PostTerminates: stage("terminated"),
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// ---- Postgres ----

type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC - Postgres с базой cart и маленьким пулом поверх него. Миграции не применяются.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		tc.WithLifecycleHooks(lifecycleHooks(tcLogger)),
		postgres.WithDatabase("cart"),
		postgres.WithUsername("app"),
		postgres.WithPassword("app"),
		tc.WithWaitStrategy(wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}
	terminate := func(c context.Context) error { return tc.TerminateContainer(pg, tc.StopContext(c)) }

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = terminate(ctx)
		return nil, nil, fmt.Errorf("conn string: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		_ = terminate(ctx)
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		_ = terminate(ctx)
		return nil, nil, fmt.Errorf("new pool: %w", err)
	}

	stop := func(c context.Context) error {
		pool.Close()
		return terminate(c)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

// ---- Redis ----

type RedisEnv struct {
	Container tc.Container
	Addr      string
}

// StartRedisTC - модуля redis в зависимостях нет, поднимаем через GenericContainer.
func StartRedisTC(ctx context.Context) (*RedisEnv, func(context.Context) error, error) {
	rc, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:          redisImage,
			ExposedPorts:   []string{"6379/tcp"},
			LifecycleHooks: []tc.ContainerLifecycleHooks{lifecycleHooks(tcLogger)},
			WaitingFor:     wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("run redis: %w", err)
	}

	addr, err := rc.Endpoint(ctx, "") // "host:port"
	if err != nil {
		_ = tc.TerminateContainer(rc)
		return nil, nil, fmt.Errorf("redis endpoint: %w", err)
	}

	stop := func(c context.Context) error { return tc.TerminateContainer(rc, tc.StopContext(c)) }
	return &RedisEnv{Container: rc, Addr: addr}, stop, nil
}

// ---- Kafka (Redpanda) ----

type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string // префикс для UniqueTopicAndGroup
}

func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		tc.WithLifecycleHooks(lifecycleHooks(tcLogger)),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	stop := func(c context.Context) error { return tc.TerminateContainer(rp, tc.StopContext(c)) }
	return &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}, stop, nil
}
