package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Корзина.
var (
	CartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart operations by result",
		},
		[]string{"op", "result"}, // result: ok|not_found|out_of_stock|lookup_failure|persist_failure|ignored
	)
	CartItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_items",
			Help: "Number of distinct products currently in cart",
		},
	)
	CartUnits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_units",
			Help: "Total quantity of all products currently in cart",
		},
	)
	SnapshotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_snapshot_writes_total",
			Help: "Write-through snapshot writes",
		},
		[]string{"result"}, // ok|error
	)
)

// Внешний API витрины (stock/products).
var StorefrontRequests = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "storefront_request_duration_seconds",
		Help:    "Storefront API request latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "outcome"}, // endpoint: stock|product; outcome: ok|not_found|error|breaker_open
)

// Kafka.
var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

// Кэш каталога.
var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Catalog cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of products currently in catalog cache",
		},
	)
)

// Уведомления.
var NotificationsSent = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "User-visible notifications by sink",
	},
	[]string{"sink", "result"}, // sink: log|kafka; result: ok|error
)

var registerOnce sync.Once

// MustRegister - регистрирует все метрики в default-регистре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CartOperations, CartItems, CartUnits, SnapshotWrites,
			StorefrontRequests,
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			CacheOps, CacheSize,
			NotificationsSent,
		)
	})
}
