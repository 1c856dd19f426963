package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func shoe(id, amount int) Product {
	return Product{ID: id, Title: "Shoe", Price: decimal.RequireFromString("139.9"), Image: "img", Amount: amount}
}

func TestCart_Find(t *testing.T) {
	c := Cart{shoe(1, 1), shoe(7, 2)}
	require.Equal(t, 0, c.Find(1))
	require.Equal(t, 1, c.Find(7))
	require.Equal(t, -1, c.Find(3))
	require.Equal(t, -1, Cart(nil).Find(1))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	orig := Cart{shoe(1, 1)}
	cp := orig.Clone()
	cp[0].Amount = 5
	cp = append(cp, shoe(2, 1))

	require.Equal(t, 1, orig[0].Amount)
	require.Len(t, orig, 1)
	require.Len(t, cp, 2)

	empty := Cart(nil).Clone()
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestCart_Equal(t *testing.T) {
	a := Cart{shoe(1, 1), shoe(2, 3)}
	b := Cart{shoe(1, 1), shoe(2, 3)}
	b[1].Price = decimal.RequireFromString("139.90")
	require.True(t, a.Equal(b), "decimal equality must ignore trailing zeros")

	require.False(t, a.Equal(Cart{shoe(2, 3), shoe(1, 1)}), "order matters")
	require.False(t, a.Equal(Cart{shoe(1, 1)}))
	require.True(t, Cart{}.Equal(nil))
}

func TestCart_Units(t *testing.T) {
	require.Equal(t, 0, Cart{}.Units())
	require.Equal(t, 6, Cart{shoe(1, 1), shoe(2, 5)}.Units())
}
