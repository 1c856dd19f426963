package domain

import "github.com/shopspring/decimal"

// Product - товар каталога в том виде, в каком он лежит в корзине.
// Amount заполнен только у позиций корзины; в ответе каталога он отсутствует.
type Product struct {
	ID     int             `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount,omitempty"`
}

// Equal - сравнение с учётом десятичной цены (reflect.DeepEqual для decimal ненадёжен).
func (p Product) Equal(other Product) bool {
	return p.ID == other.ID &&
		p.Title == other.Title &&
		p.Price.Equal(other.Price) &&
		p.Image == other.Image &&
		p.Amount == other.Amount
}

// Stock - доступный остаток товара. Не сохраняется и не кэшируется.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// AmountUpdate - аргумент операции изменения количества.
type AmountUpdate struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}
