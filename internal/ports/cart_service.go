package ports

import (
	"context"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

// CartService - поверхность корзины для UI-слоя (HTTP, Kafka-команды).
// Операции возвращают новое состояние либо ошибку вида domain.Kind.
type CartService interface {
	Cart(ctx context.Context) domain.Cart
	AddProduct(ctx context.Context, productID int) (domain.Cart, error)
	RemoveProduct(ctx context.Context, productID int) (domain.Cart, error)
	UpdateProductAmount(ctx context.Context, update domain.AmountUpdate) (domain.Cart, error)
}
