package ports

import (
	"context"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

// StockOracle - удалённый источник доступного остатка.
type StockOracle interface {
	Stock(ctx context.Context, productID int) (domain.Stock, error)
}

// ProductCatalog - удалённый каталог карточек товаров (без поля Amount).
type ProductCatalog interface {
	Product(ctx context.Context, productID int) (*domain.Product, error)
}
