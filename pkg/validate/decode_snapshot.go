package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
)

// DecodeSnapshot - строгое декодирование снапшота корзины (JSON-массив товаров)
// с последующей проверкой инвариантов. Ошибки разбора тоже оборачивают ErrInvalidSnapshot.
func DecodeSnapshot(ctx context.Context, validator ports.SnapshotValidator, raw []byte) (domain.Cart, error) {
	var cart domain.Cart
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cart); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrInvalidSnapshot, err)
	}
	// гарантируем отсутствие данных после массива
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidSnapshot)
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	if err := validator.Validate(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// EncodeSnapshot - канонический JSON снапшота; nil-корзина пишется как [].
func EncodeSnapshot(cart domain.Cart) (string, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(raw), nil
}
