package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

var _ ports.ProductCache = (*LRUCacheTTL)(nil)

type entry struct {
	id        int
	product   *domain.Product
	expiresAt time.Time
}

// LRUCacheTTL - кэш карточек каталога: LRU по ёмкости плюс скользящий TTL.
// Остатки сюда не попадают.
type LRUCacheTTL struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[int]*list.Element

	mu sync.Mutex
}

func NewLRUCacheTTL(capacity int, ttl time.Duration) *LRUCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCacheTTL{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[int]*list.Element),
	}
}

func (c *LRUCacheTTL) Get(_ context.Context, id int) (*domain.Product, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
		return nil, false
	}
	c.ll.MoveToFront(elem)

	if c.ttl > 0 {
		ent.expiresAt = c.expiryFrom(now)
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return cloneProduct(ent.product), true
}

// Set - кладёт карточку без количества: Amount - свойство позиции корзины, а не каталога.
func (c *LRUCacheTTL) Set(_ context.Context, product *domain.Product) error {
	if product == nil || product.ID <= 0 {
		return nil
	}
	now := time.Now()
	stored := cloneProduct(product)
	stored.Amount = 0

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[product.ID]; ok {
		ent := elem.Value.(*entry)
		ent.product = stored
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{
		id:        product.ID,
		product:   stored,
		expiresAt: c.expiryFrom(now),
	})
	c.index[product.ID] = elem
	metrics.CacheSize.Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	return nil
}

func (c *LRUCacheTTL) WarmUp(ctx context.Context, products []*domain.Product) error {
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Set(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// Len - текущее число записей (включая ещё не вычищенные просроченные).
func (c *LRUCacheTTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
