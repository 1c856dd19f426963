package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

var (
	_ ports.StockOracle    = (*Client)(nil)
	_ ports.ProductCatalog = (*Client)(nil)
)

var (
	// ErrNotFound - витрина ответила 404.
	ErrNotFound = errors.New("storefront: not found")
	// ErrUnexpectedStatus - любой другой не-2xx ответ.
	ErrUnexpectedStatus = errors.New("storefront: unexpected status")
	// ErrBadPayload - тело ответа не разобралось или не совпало с запрошенным id.
	ErrBadPayload = errors.New("storefront: bad payload")
)

const (
	endpointStock   = "stock"
	endpointProduct = "product"

	maxBodyBytes = 1 << 20
)

// Config - параметры клиента витрины.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	BreakerTimeout time.Duration // сколько автомат остаётся открытым
	BreakerMinReqs uint32        // минимум запросов в окне до срабатывания
}

// Client - HTTP-клиент API витрины: остатки и карточки товаров.
// На каждое семейство эндпоинтов свой автомат, чтобы падение /stock не гасило /products.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client

	stockCB   *gobreaker.CircuitBreaker
	productCB *gobreaker.CircuitBreaker
}

// NewClient - клиент с otelhttp-транспортом. transport == nil - http.DefaultTransport.
func NewClient(cfg Config, log ports.Logger, transport http.RoundTripper) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("storefront base url is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.BreakerMinReqs == 0 {
		cfg.BreakerMinReqs = 5
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: base,
		timeout: cfg.RequestTimeout,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
		},
		stockCB:   newBreaker("storefront-stock", cfg, log),
		productCB: newBreaker("storefront-products", cfg, log),
	}, nil
}

func newBreaker(name string, cfg Config, log ports.Logger) *gobreaker.CircuitBreaker {
	minReqs := cfg.BreakerMinReqs
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: minReqs,
		Interval:    10 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= minReqs && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		// 404 - нормальный ответ витрины, автомат на нём не копит отказы
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf(context.Background(), "circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// Stock - GET {base}/stock/{id}.
func (c *Client) Stock(ctx context.Context, productID int) (domain.Stock, error) {
	var stock domain.Stock
	if err := c.get(ctx, c.stockCB, endpointStock, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return domain.Stock{}, err
	}
	if stock.ID == 0 {
		stock.ID = productID
	}
	if stock.ID != productID {
		return domain.Stock{}, fmt.Errorf("%w: stock id %d, want %d", ErrBadPayload, stock.ID, productID)
	}
	return stock, nil
}

// Product - GET {base}/products/{id}. Amount из ответа каталога отбрасывается.
func (c *Client) Product(ctx context.Context, productID int) (*domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, c.productCB, endpointProduct, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return nil, err
	}
	if product.ID != productID {
		return nil, fmt.Errorf("%w: product id %d, want %d", ErrBadPayload, product.ID, productID)
	}
	product.Amount = 0
	return &product, nil
}

func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, endpoint, path string, out any) error {
	start := time.Now()
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, out)
	})
	metrics.StorefrontRequests.WithLabelValues(endpoint, outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("storefront %s %s: %w", endpoint, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}
