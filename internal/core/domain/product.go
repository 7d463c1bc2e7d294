package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       int // 1-based, contiguous across the catalog
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (p Product) String() string {
	return fmt.Sprintf("%d. %s - Price: %s, Quantity: %d", p.ID, p.Name, p.Price.String(), p.Quantity)
}

type CartEntry struct {
	Product  string
	Quantity int
}
