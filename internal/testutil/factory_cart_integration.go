//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// UniqueKey - отдельный слот снапшота на тест.
func UniqueKey() string { return "@RocketShoes:cart:" + UniqSuffix() }

// Мини-генератор позиции корзины
func MakeProduct(id, amount int, opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:     id,
		Title:  fmt.Sprintf("Tênis %d", id),
		Price:  decimal.New(int64(9990+id), -2),
		Image:  fmt.Sprintf("https://cdn.example/shoes/%d.jpg", id),
		Amount: amount,
	}
	for _, fn := range opts {
		fn(&p)
	}
	return p
}

// MakeCart - корзина из n позиций с id 1..n и amount = id.
func MakeCart(n int) domain.Cart {
	cart := make(domain.Cart, 0, n)
	for i := 1; i <= n; i++ {
		cart = append(cart, MakeProduct(i, i))
	}
	return cart
}

func WithTitle(title string) func(*domain.Product) {
	return func(p *domain.Product) { p.Title = title }
}

func WithPrice(price string) func(*domain.Product) {
	return func(p *domain.Product) { p.Price = decimal.RequireFromString(price) }
}
