package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
	"github.com/Gunvolt24/shoecart/pkg/telemetry"
	"github.com/Gunvolt24/shoecart/pkg/validate"
)

// scarceStock - остаток, при котором (и ниже) товар считается недоступным для увеличения.
const scarceStock = 1

// ErrClosed - операция после Close.
var ErrClosed = errors.New("cart store is closed")

// Проверка, что CartStore удовлетворяет интерфейсу ports.CartService.
var _ ports.CartService = (*CartStore)(nil)

// CartStore - состояние корзины и write-through в один слот хранилища.
// Операции сериализованы семафором ops целиком, включая походы в витрину;
// ожидание очереди прерывается отменой контекста вызывающего.
// mu охраняет только cart и closed, поэтому Cart не ждёт медленную операцию.
// Новое состояние сначала записывается в слот и только потом становится текущим,
// поэтому при ошибке записи память и слот остаются на прежнем снапшоте.
type CartStore struct {
	key       string
	store     ports.SnapshotStore
	stock     ports.StockOracle
	catalog   ports.ProductCatalog
	validator ports.SnapshotValidator
	log       ports.Logger

	ops chan struct{}

	mu     sync.Mutex
	cart   domain.Cart
	closed bool
}

// NewCartStore - DI-конструктор. До Load корзина пуста.
func NewCartStore(
	key string,
	store ports.SnapshotStore,
	stock ports.StockOracle,
	catalog ports.ProductCatalog,
	validator ports.SnapshotValidator,
	log ports.Logger,
) *CartStore {
	return &CartStore{
		key:       key,
		store:     store,
		stock:     stock,
		catalog:   catalog,
		validator: validator,
		log:       log,
		ops:       make(chan struct{}, 1),
		cart:      domain.Cart{},
	}
}

// Load - читает снапшот из слота. Нет слота или пустое значение - пустая корзина.
// Битый снапшот даёт validate.ErrInvalidSnapshot, корзина остаётся пустой, слот не трогаем.
func (s *CartStore) Load(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	defer s.release()

	raw, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.log.Errorf(ctx, "snapshot get failed key=%s err=%v", s.key, err)
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		s.setCart(domain.Cart{})
		s.log.Infof(ctx, "no cart snapshot key=%s, starting empty", s.key)
		return nil
	}

	cart, err := validate.DecodeSnapshot(ctx, s.validator, []byte(raw))
	if err != nil {
		s.setCart(domain.Cart{})
		return fmt.Errorf("load snapshot key=%s: %w", s.key, err)
	}

	s.setCart(cart)
	s.log.Infof(ctx, "cart loaded key=%s items=%d units=%d", s.key, len(cart), cart.Units())
	return nil
}

// Close - после него операции возвращают ErrClosed. Снапшот уже в слоте, сбрасывать нечего.
// Уже начатая операция доводится до конца.
func (s *CartStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Cart - копия текущей корзины.
func (s *CartStore) Cart(_ context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// AddProduct - +1 к позиции или новая позиция с amount=1.
// Остаток проверяется как есть, без вычета уже лежащих в корзине единиц.
func (s *CartStore) AddProduct(ctx context.Context, productID int) (domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "CartStore.AddProduct", productID)
	defer span.End()

	if err := s.acquire(ctx); err != nil {
		return s.fail(ctx, span, domain.OpAdd, productID, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err))
	}
	defer s.release()

	if s.isClosed() {
		return s.fail(ctx, span, domain.OpAdd, productID, ErrClosed)
	}

	stock, err := s.stock.Stock(ctx, productID)
	if err != nil {
		return s.fail(ctx, span, domain.OpAdd, productID, fmt.Errorf("%w: stock: %w", domain.ErrLookupFailure, err))
	}
	if stock.Amount <= scarceStock {
		return s.fail(ctx, span, domain.OpAdd, productID, domain.ErrOutOfStock)
	}

	next := s.Cart(ctx)
	if i := next.Find(productID); i >= 0 {
		next[i].Amount++
		return s.commit(ctx, span, domain.OpAdd, productID, next)
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return s.fail(ctx, span, domain.OpAdd, productID, fmt.Errorf("%w: product: %w", domain.ErrLookupFailure, err))
	}
	if product == nil {
		return s.fail(ctx, span, domain.OpAdd, productID, fmt.Errorf("%w: product: empty response", domain.ErrLookupFailure))
	}

	item := *product
	item.ID = productID
	item.Amount = 1
	next = append(next, item)
	return s.commit(ctx, span, domain.OpAdd, productID, next)
}

// RemoveProduct - удаляет позицию целиком.
func (s *CartStore) RemoveProduct(ctx context.Context, productID int) (domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "CartStore.RemoveProduct", productID)
	defer span.End()

	if err := s.acquire(ctx); err != nil {
		return s.fail(ctx, span, domain.OpRemove, productID, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err))
	}
	defer s.release()

	if s.isClosed() {
		return s.fail(ctx, span, domain.OpRemove, productID, ErrClosed)
	}

	current := s.Cart(ctx)
	i := current.Find(productID)
	if i < 0 {
		return s.fail(ctx, span, domain.OpRemove, productID, domain.ErrNotFound)
	}

	next := make(domain.Cart, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)
	return s.commit(ctx, span, domain.OpRemove, productID, next)
}

// UpdateProductAmount - выставляет количество позиции.
// amount < 1 молча игнорируется: без ошибки, записи и запросов наружу.
// При дефицитном остатке запрещено только увеличение.
func (s *CartStore) UpdateProductAmount(ctx context.Context, update domain.AmountUpdate) (domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "CartStore.UpdateProductAmount", update.ProductID)
	defer span.End()
	span.SetAttributes(attribute.Int("cart.amount", update.Amount))

	if update.Amount < 1 {
		span.AddEvent("amount below 1 ignored")
		return s.Cart(ctx), nil
	}

	if err := s.acquire(ctx); err != nil {
		return s.fail(ctx, span, domain.OpUpdate, update.ProductID, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err))
	}
	defer s.release()

	if s.isClosed() {
		return s.fail(ctx, span, domain.OpUpdate, update.ProductID, ErrClosed)
	}

	next := s.Cart(ctx)
	i := next.Find(update.ProductID)
	if i < 0 {
		return s.fail(ctx, span, domain.OpUpdate, update.ProductID, domain.ErrNotFound)
	}

	stock, err := s.stock.Stock(ctx, update.ProductID)
	if err != nil {
		return s.fail(ctx, span, domain.OpUpdate, update.ProductID, fmt.Errorf("%w: stock: %w", domain.ErrLookupFailure, err))
	}
	if stock.Amount <= scarceStock && next[i].Amount < update.Amount {
		return s.fail(ctx, span, domain.OpUpdate, update.ProductID, domain.ErrOutOfStock)
	}

	next[i].Amount = update.Amount
	return s.commit(ctx, span, domain.OpUpdate, update.ProductID, next)
}

// ------вспомогательные функции------

func (s *CartStore) startSpan(ctx context.Context, name string, productID int) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attribute.Int("product.id", productID)))
}

// commit - пишет next в слот и только после успеха делает его текущим. Вызывать под ops.
func (s *CartStore) commit(ctx context.Context, span trace.Span, op domain.Operation, productID int, next domain.Cart) (domain.Cart, error) {
	raw, err := validate.EncodeSnapshot(next)
	if err != nil {
		return s.fail(ctx, span, op, productID, fmt.Errorf("%w: %w", domain.ErrPersistFailure, err))
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		metrics.SnapshotWrites.WithLabelValues("error").Inc()
		return s.fail(ctx, span, op, productID, fmt.Errorf("%w: %w", domain.ErrPersistFailure, err))
	}
	metrics.SnapshotWrites.WithLabelValues("ok").Inc()

	s.setCart(next)
	s.log.Infof(ctx, "cart %s product_id=%d items=%d units=%d", op, productID, len(next), next.Units())
	return next.Clone(), nil
}

// fail - оборачивает причину в OpError; корзина не меняется.
func (s *CartStore) fail(ctx context.Context, span trace.Span, op domain.Operation, productID int, cause error) (domain.Cart, error) {
	err := &domain.OpError{Op: op, ProductID: productID, Err: cause}
	kind := domain.KindOf(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))

	switch kind {
	case domain.KindNotFound, domain.KindOutOfStock:
		s.log.Warnf(ctx, "cart %s rejected: %v", op, err)
	default:
		s.log.Errorf(ctx, "cart %s failed: %v", op, err)
	}
	return s.Cart(ctx), err
}

// acquire - занимает слот ops или сдаётся по ctx.
func (s *CartStore) acquire(ctx context.Context) error {
	select {
	case s.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for cart: %w", ctx.Err())
	}
}

func (s *CartStore) release() { <-s.ops }

func (s *CartStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *CartStore) setCart(cart domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
	metrics.CartItems.Set(float64(len(cart)))
	metrics.CartUnits.Set(float64(cart.Units()))
}
