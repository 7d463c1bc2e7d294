package domain

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInsufficient OrderStatus = "insufficient"
)

// Order is the outcome of one checkout. Lines that could not be covered by
// the catalog are kept with OrderStatusInsufficient.
type Order struct {
	ID        string
	Customer  string
	Lines     []OrderLine
	CreatedAt time.Time
}

type OrderLine struct {
	Product   string
	Quantity  int
	Available int
	Status    OrderStatus
}

func (o Order) Confirmed() []OrderLine {
	return o.filter(OrderStatusConfirmed)
}

func (o Order) Insufficient() []OrderLine {
	return o.filter(OrderStatusInsufficient)
}

func (o Order) filter(status OrderStatus) []OrderLine {
	var lines []OrderLine
	for _, l := range o.Lines {
		if l.Status == status {
			lines = append(lines, l)
		}
	}
	return lines
}
