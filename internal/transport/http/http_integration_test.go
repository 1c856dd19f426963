//go:build integration

package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/shoecart/internal/cache/memory"
	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/notify"
	pgrepo "github.com/Gunvolt24/shoecart/internal/repo/postgres"
	"github.com/Gunvolt24/shoecart/internal/storefront"
	"github.com/Gunvolt24/shoecart/internal/testutil"
	rest "github.com/Gunvolt24/shoecart/internal/transport/http"
	"github.com/Gunvolt24/shoecart/internal/usecase"
	"github.com/Gunvolt24/shoecart/pkg/logger"
	"github.com/Gunvolt24/shoecart/pkg/validate"
)

// 1) Полный цикл: добавить, увеличить, уменьшить, удалить; снапшот в Postgres совпадает с ответом.
func TestHTTP_CartLifecycle_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	env := startStack(ctx, t)

	cart := do(t, env.url, http.MethodPost, "/cart/items/1", "", http.StatusOK)
	require.Len(t, cart, 1)
	require.Equal(t, 1, cart[0].Amount)
	require.Equal(t, "Tênis de Caminhada Leve Confortável", cart[0].Title)

	cart = do(t, env.url, http.MethodPost, "/cart/items/1", "", http.StatusOK)
	require.Equal(t, 2, cart[0].Amount)

	cart = do(t, env.url, http.MethodPut, "/cart/items/1", `{"amount":1}`, http.StatusOK)
	require.Equal(t, 1, cart[0].Amount)

	// снапшот в слоте - ровно текущая корзина
	raw, ok, err := env.repo.Get(ctx, env.key)
	require.NoError(t, err)
	require.True(t, ok)
	persisted, err := validate.DecodeSnapshot(ctx, validate.NewSnapshotValidator(), []byte(raw))
	require.NoError(t, err)
	require.True(t, persisted.Equal(cart))

	cart = do(t, env.url, http.MethodDelete, "/cart/items/1", "", http.StatusOK)
	require.Empty(t, cart)

	raw, _, err = env.repo.Get(ctx, env.key)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)
}

// 2) Отказы: нет на складе (409), нет в корзине (404), витрина недоступна (502).
func TestHTTP_CartFailures_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	env := startStack(ctx, t)

	body := doErr(t, env.url, http.MethodPost, "/cart/items/2", "", http.StatusConflict)
	require.Equal(t, notify.MsgOutOfStock, body["error"])

	body = doErr(t, env.url, http.MethodDelete, "/cart/items/1", "", http.StatusNotFound)
	require.Equal(t, notify.MsgRemoveFailed, body["error"])

	body = doErr(t, env.url, http.MethodPost, "/cart/items/7", "", http.StatusBadGateway)
	require.Equal(t, notify.MsgAddFailed, body["error"])

	// ни один отказ не записал слот
	_, ok, err := env.repo.Get(ctx, env.key)
	require.NoError(t, err)
	require.False(t, ok)
}

// 3) Перезапуск: новая CartStore поверх того же слота видит прежнюю корзину.
func TestHTTP_CartSurvivesRestart_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	env := startStack(ctx, t)
	do(t, env.url, http.MethodPost, "/cart/items/1", "", http.StatusOK)

	store := usecase.NewCartStore(env.key, env.repo, env.client, env.client, validate.NewSnapshotValidator(), logger.NewNop())
	require.NoError(t, store.Load(ctx))

	got := store.Cart(ctx)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].ID)
}

// --- функции помощники ---

type stackEnv struct {
	url    string
	key    string
	repo   *pgrepo.SnapshotRepository
	client *storefront.Client
}

// startStack - Postgres в контейнере, витрина на httptest и полный HTTP-пайплайн поверх них.
func startStack(ctx context.Context, t *testing.T) stackEnv {
	t.Helper()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	sf := httptest.NewServer(storefrontStub())
	t.Cleanup(sf.Close)

	client, err := storefront.NewClient(storefront.Config{BaseURL: sf.URL + "/"}, logg, nil)
	require.NoError(t, err)
	catalog := storefront.NewCachedCatalog(client, cachemem.NewLRUCacheTTL(100, time.Minute), logg)

	repo := pgrepo.NewSnapshotRepository(pg.Pool)
	key := testutil.UniqueKey()
	store := usecase.NewCartStore(key, repo, client, catalog, validate.NewSnapshotValidator(), logg)
	require.NoError(t, store.Load(ctx))
	t.Cleanup(func() { _ = store.Close() })

	svc := notify.NewDispatcher(store, notify.NewLogSink(logg))
	ts := httptest.NewServer(rest.NewRouter(rest.NewHandler(svc, logg, 2*time.Second), "", ""))
	t.Cleanup(ts.Close)

	return stackEnv{url: ts.URL, key: key, repo: repo, client: client}
}

// storefrontStub - товар 1 в достатке, товар 2 на исходе, товар 7 ломает витрину.
func storefrontStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"amount":5}`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://cdn.example/1.jpg"}`))
	})
	mux.HandleFunc("/stock/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"amount":1}`))
	})
	mux.HandleFunc("/stock/7", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return mux
}

func do(t *testing.T, base, method, path, body string, wantStatus int) domain.Cart {
	t.Helper()
	raw := send(t, base, method, path, body, wantStatus)

	var cart domain.Cart
	require.NoError(t, json.Unmarshal(raw, &cart))
	return cart
}

func doErr(t *testing.T, base, method, path, body string, wantStatus int) map[string]any {
	t.Helper()
	raw := send(t, base, method, path, body, wantStatus)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	return got
}

func send(t *testing.T, base, method, path, body string, wantStatus int) []byte {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, base+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, string(raw))
	return raw
}
