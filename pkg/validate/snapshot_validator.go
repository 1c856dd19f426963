package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
)

// Проверка, что SnapshotValidator удовлетворяет интерфейсу ports.SnapshotValidator.
var _ ports.SnapshotValidator = (*SnapshotValidator)(nil)

// ErrInvalidSnapshot - базовая (sentinel) ошибка валидации снапшота корзины.
var ErrInvalidSnapshot = errors.New("cart snapshot validation failed")

// SnapshotValidator - проверяет инварианты корзины:
// id > 0, amount >= 1, нет двух позиций с одинаковым id.
type SnapshotValidator struct{}

// NewSnapshotValidator - конструктор. Validate возвращает ErrInvalidSnapshot с обёрнутой причиной.
func NewSnapshotValidator() *SnapshotValidator { return &SnapshotValidator{} }

// Validate - проверяет корзину целиком; пустая корзина валидна.
func (v *SnapshotValidator) Validate(_ context.Context, cart domain.Cart) error {
	seen := make(map[int]int, len(cart))
	for i := range cart {
		p := &cart[i]
		if p.ID <= 0 {
			return fmt.Errorf("%w: [%d].id должен быть положительным", ErrInvalidSnapshot, i)
		}
		if p.Amount < 1 {
			return fmt.Errorf("%w: [%d].amount должен быть >= 1 (id=%d)", ErrInvalidSnapshot, i, p.ID)
		}
		if prev, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: id=%d повторяется в позициях %d и %d", ErrInvalidSnapshot, p.ID, prev, i)
		}
		seen[p.ID] = i
	}
	return nil
}
