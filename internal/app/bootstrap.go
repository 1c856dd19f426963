package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/shoecart/config"
	cachemem "github.com/Gunvolt24/shoecart/internal/cache/memory"
	"github.com/Gunvolt24/shoecart/internal/kafka"
	"github.com/Gunvolt24/shoecart/internal/notify"
	"github.com/Gunvolt24/shoecart/internal/ports"
	memrepo "github.com/Gunvolt24/shoecart/internal/repo/memory"
	"github.com/Gunvolt24/shoecart/internal/repo/postgres"
	redisrepo "github.com/Gunvolt24/shoecart/internal/repo/redis"
	"github.com/Gunvolt24/shoecart/internal/storefront"
	rest "github.com/Gunvolt24/shoecart/internal/transport/http"
	"github.com/Gunvolt24/shoecart/internal/usecase"
	"github.com/Gunvolt24/shoecart/pkg/logger"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
	"github.com/Gunvolt24/shoecart/pkg/telemetry"
	"github.com/Gunvolt24/shoecart/pkg/validate"
)

// Бэкенды слота корзины.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// App - собранное приложение и его внешние интерфейсы (HTTP, metrics, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер корзины
	MetricsServer   *http.Server          // отдельный /metrics; nil - только на основном сервере
	KafkaConsumer   ports.MessageConsumer // консьюмер команд; nil - Kafka выключена
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-серверов
}

// Cleanup - функция освобождения ресурсов.
type Cleanup func()

// applyGinMode - устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// closers - стек функций освобождения, вызывается в обратном порядке.
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// Bootstrap - собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	var cl closers
	cl.add(func() {
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	})
	fail := func(err error) (*App, Cleanup, error) {
		cl.run()
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию - no-op.
	if cfg.Tracing.Enabled {
		shutdownTrace, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			cl.add(func() {
				if terr := shutdownTrace(context.Background()); terr != nil {
					logg.Warnf(ctx, "shutdown tracing: %v", terr)
				}
			})
		}
	}

	// Слот корзины.
	store, closeStore, err := openSnapshotStore(ctx, cfg, logg)
	if err != nil {
		return fail(err)
	}
	cl.add(closeStore)

	// Витрина: остатки напрямую, карточки через кэш.
	client, err := storefront.NewClient(storefront.Config{
		BaseURL:        cfg.Storefront.BaseURL,
		RequestTimeout: cfg.Storefront.RequestTimeout,
		BreakerTimeout: cfg.Storefront.BreakerTimeout,
		BreakerMinReqs: cfg.Storefront.BreakerMinReqs,
	}, logg, nil)
	if err != nil {
		return fail(err)
	}

	var (
		catalog ports.ProductCatalog = client
		cached  *storefront.CachedCatalog
	)
	if cfg.Cache.Enabled {
		cached = storefront.NewCachedCatalog(client, cachemem.NewLRUCacheTTL(cfg.Cache.Capacity, cfg.Cache.TTL), logg)
		catalog = cached
	}

	// Корзина. Битый снапшот - предупреждение и пустая корзина, остальное - фатально.
	cartStore := usecase.NewCartStore(cfg.Cart.StorageKey, store, client, catalog, validate.NewSnapshotValidator(), logg)
	if err := cartStore.Load(ctx); err != nil {
		if !errors.Is(err, validate.ErrInvalidSnapshot) {
			return fail(fmt.Errorf("load cart: %w", err))
		}
		logg.Warnf(ctx, "stored cart ignored: %v", err)
	}
	cl.add(func() { _ = cartStore.Close() })

	// Прогрев кэша карточек позициями корзины
	if n := cfg.Cache.WarmUpN; n > 0 && cached != nil {
		if err := cached.Prime(ctx, cartStore.Cart(ctx), n); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Уведомления: лог всегда, Kafka - если задан топик.
	notifier := notify.Fanout{notify.NewLogSink(logg)}
	if cfg.Kafka.NotificationsTopic != "" {
		sink := notify.NewKafkaSink(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic), logg, cfg.Kafka.ProcessTimeout)
		notifier = append(notifier, sink)
		cl.add(func() {
			if err := sink.Close(); err != nil {
				logg.Warnf(ctx, "notifications writer close error: %v", err)
			}
		})
	}
	service := notify.NewDispatcher(cartStore, notifier)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(service, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, cfg.HTTP.StaticDir, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		MetricsServer:   newMetricsServer(cfg.Metrics.Addr, cfg.HTTP.ReadHeaderTimeout),
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Консьюмер команд корзины.
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, service, logg)
		app.KafkaConsumer = consumer
		cl.add(func() {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		})
	}

	return app, Cleanup(cl.run), nil
}

// openSnapshotStore - слот корзины по CART_STORAGE_BACKEND и функция его закрытия.
func openSnapshotStore(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.SnapshotStore, func(), error) {
	switch backend := strings.ToLower(strings.TrimSpace(cfg.Cart.StorageBackend)); backend {
	case "", BackendMemory:
		log.Infof(ctx, "cart storage: memory (lost on restart)")
		return memrepo.NewSnapshotStore(), func() {}, nil

	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Infof(ctx, "postgres migrations applied=%d", applied)
		}
		log.Infof(ctx, "cart storage: postgres")
		return postgres.NewSnapshotRepository(pool), pool.Close, nil

	case BackendRedis:
		rdb, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		log.Infof(ctx, "cart storage: redis addr=%s db=%d", cfg.Redis.Addr, cfg.Redis.DB)
		return redisrepo.NewSnapshotStore(rdb), func() {
			if err := rdb.Close(); err != nil {
				log.Warnf(ctx, "redis close error: %v", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func newMetricsServer(addr string, readHeaderTimeout time.Duration) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
}

// Run - запускает HTTP-серверы и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-серверов.
	for _, srv := range a.servers() {
		go func(srv *http.Server) {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-серверов.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	for _, srv := range a.servers() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server shutdown failed addr=%s: %v", srv.Addr, err)
		} else {
			a.Logger.Infof(ctx, "http server stopped gracefully addr=%s", srv.Addr)
		}
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}

func (a *App) servers() []*http.Server {
	srvs := []*http.Server{a.HTTPServer}
	if a.MetricsServer != nil {
		srvs = append(srvs, a.MetricsServer)
	}
	return srvs
}
