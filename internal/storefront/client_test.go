package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shoecart/pkg/logger"
)

func newTestClient(t *testing.T, h http.Handler, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/"
	c, err := NewClient(cfg, logger.NewNop(), nil)
	require.NoError(t, err)
	return c
}

func storefrontMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"amount":3}`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://cdn.example/1.jpg"}`))
	})
	mux.HandleFunc("/products/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"title":"wrong","price":1}`))
	})
	mux.HandleFunc("/stock/5", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/stock/6", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})
	return mux
}

func TestClient_Stock_OK(t *testing.T) {
	c := newTestClient(t, storefrontMux(), Config{})

	stock, err := c.Stock(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, stock.ID)
	require.Equal(t, 3, stock.Amount)
}

func TestClient_Product_OK(t *testing.T) {
	c := newTestClient(t, storefrontMux(), Config{})

	p, err := c.Product(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, p.ID)
	require.Equal(t, "179.9", p.Price.String())
	require.Zero(t, p.Amount)
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t, storefrontMux(), Config{})
	ctx := context.Background()

	_, err := c.Stock(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Stock(ctx, 5)
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = c.Stock(ctx, 6)
	require.ErrorIs(t, err, ErrBadPayload)

	_, err = c.Product(ctx, 2)
	require.ErrorIs(t, err, ErrBadPayload)
}

func TestClient_Timeout(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c := newTestClient(t, h, Config{RequestTimeout: 50 * time.Millisecond})

	_, err := c.Stock(context.Background(), 1)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_BreakerOpensOnFailures(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, h, Config{BreakerMinReqs: 3, BreakerTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Stock(ctx, 1)
		require.ErrorIs(t, err, ErrUnexpectedStatus)
	}

	// автомат открыт - до сервера не доходим
	_, err := c.Stock(ctx, 1)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, int32(3), calls.Load())

	// каталог живёт на своём автомате
	_, err = c.Product(ctx, 1)
	require.False(t, errors.Is(err, gobreaker.ErrOpenState))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), Config{BreakerMinReqs: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Product(ctx, 1)
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "}, logger.NewNop(), nil)
	require.Error(t, err)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", outcome(nil))
	require.Equal(t, "not_found", outcome(ErrNotFound))
	require.Equal(t, "breaker_open", outcome(gobreaker.ErrOpenState))
	require.Equal(t, "error", outcome(errors.New("x")))
}
