package domain

// Cart - упорядоченный список товаров, уникальный по ID.
type Cart []Product

// Find - индекс позиции с данным ID или -1.
func (c Cart) Find(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone - независимая копия (Product не содержит ссылочных полей, кроме decimal,
// а decimal.Decimal неизменяем).
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	return append(Cart(make([]Product, 0, len(c))), c...)
}

// Equal - поэлементное сравнение с сохранением порядка.
func (c Cart) Equal(other Cart) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Units - суммарное количество единиц в корзине.
func (c Cart) Units() int {
	total := 0
	for i := range c {
		total += c[i].Amount
	}
	return total
}
