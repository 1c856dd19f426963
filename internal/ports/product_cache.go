package ports

import (
	"context"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

// ProductCache - кэш карточек каталога.
// Требования к реализации: потокобезопасность; доступ по ключу O(1); возврат копий.
type ProductCache interface {
	// Get - (product, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, productID int) (*domain.Product, bool)

	// Set - сохранить/обновить карточку.
	Set(ctx context.Context, product *domain.Product) error

	// WarmUp - массовая загрузка; реализация должна уважать отмену контекста.
	WarmUp(ctx context.Context, products []*domain.Product) error
}
