package storefront

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
)

var _ ports.ProductCatalog = (*CachedCatalog)(nil)

// CachedCatalog - каталог поверх кэша карточек. Параллельные промахи по одному id
// сливаются в один запрос к витрине.
type CachedCatalog struct {
	next  ports.ProductCatalog
	cache ports.ProductCache
	log   ports.Logger
	sf    singleflight.Group
}

func NewCachedCatalog(next ports.ProductCatalog, cache ports.ProductCache, log ports.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, log: log}
}

func (c *CachedCatalog) Product(ctx context.Context, productID int) (*domain.Product, error) {
	if product, ok := c.cache.Get(ctx, productID); ok {
		return product, nil
	}

	v, err, _ := c.sf.Do(strconv.Itoa(productID), func() (interface{}, error) {
		product, err := c.next.Product(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, product); err != nil {
			c.log.Warnf(ctx, "catalog cache set failed: product_id=%d err=%v", productID, err)
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	// результат общий для всех ожидающих - отдаём каждому свою копию
	product := *v.(*domain.Product)
	return &product, nil
}

// Prime - прогрев кэша карточками первых n позиций корзины (n <= 0 - ничего).
func (c *CachedCatalog) Prime(ctx context.Context, cart domain.Cart, n int) error {
	if n <= 0 || len(cart) == 0 {
		return nil
	}
	if n > len(cart) {
		n = len(cart)
	}
	products := make([]*domain.Product, 0, n)
	for i := 0; i < n; i++ {
		p := cart[i]
		p.Amount = 0
		products = append(products, &p)
	}
	return c.cache.WarmUp(ctx, products)
}
