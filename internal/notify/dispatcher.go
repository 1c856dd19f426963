package notify

import (
	"context"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

var _ ports.CartService = (*Dispatcher)(nil)

// Dispatcher - декоратор корзины: на каждый отказ ровно одно уведомление.
// Ошибка при этом возвращается вызывающему как есть.
type Dispatcher struct {
	next     ports.CartService
	notifier ports.Notifier
}

func NewDispatcher(next ports.CartService, notifier ports.Notifier) *Dispatcher {
	return &Dispatcher{next: next, notifier: notifier}
}

func (d *Dispatcher) Cart(ctx context.Context) domain.Cart { return d.next.Cart(ctx) }

func (d *Dispatcher) AddProduct(ctx context.Context, productID int) (domain.Cart, error) {
	cart, err := d.next.AddProduct(ctx, productID)
	return cart, d.report(ctx, domain.OpAdd, err)
}

func (d *Dispatcher) RemoveProduct(ctx context.Context, productID int) (domain.Cart, error) {
	cart, err := d.next.RemoveProduct(ctx, productID)
	return cart, d.report(ctx, domain.OpRemove, err)
}

func (d *Dispatcher) UpdateProductAmount(ctx context.Context, update domain.AmountUpdate) (domain.Cart, error) {
	cart, err := d.next.UpdateProductAmount(ctx, update)
	if err == nil && update.Amount < 1 {
		metrics.CartOperations.WithLabelValues(string(domain.OpUpdate), "ignored").Inc()
		return cart, nil
	}
	return cart, d.report(ctx, domain.OpUpdate, err)
}

func (d *Dispatcher) report(ctx context.Context, op domain.Operation, err error) error {
	if err == nil {
		metrics.CartOperations.WithLabelValues(string(op), "ok").Inc()
		return nil
	}
	metrics.CartOperations.WithLabelValues(string(op), string(domain.KindOf(err))).Inc()
	d.notifier.Error(ctx, Message(op, err))
	return err
}
