package fare

import (
	"fmt"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

// SumAncillary prices quantity units of an extra such as a checked bag.
func SumAncillary(unitPrice, currency string, quantity int) (domain.Money, error) {
	if quantity < 1 {
		return domain.Money{}, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}
	unit, err := domain.NewMoney(unitPrice, currency)
	if err != nil {
		return domain.Money{}, err
	}
	if unit.Amount.IsNegative() {
		return domain.Money{}, fmt.Errorf("%w: negative unit price %s", domain.ErrInvalidAmount, unitPrice)
	}
	return unit.Mul(int64(quantity)), nil
}

type Line struct {
	Kind     string
	Quantity int
	Unit     domain.Money
	Total    domain.Money
}

// Describe renders "2 bags × £35.00 = £70.00".
func (l Line) Describe() string {
	noun := l.Kind
	if l.Quantity != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s × %s = %s", l.Quantity, noun, l.Unit.Display(), l.Total.Display())
}

// Basket aggregates ancillaries for one order. Every line settles in the
// basket currency.
type Basket struct {
	currency string
	lines    []Line
}

func NewBasket(settlementCurrency string) *Basket {
	return &Basket{currency: settlementCurrency}
}

// Add prices and appends a line. A line in another currency is rejected and
// the basket is left unchanged.
func (b *Basket) Add(kind, unitPrice, currency string, quantity int) (Line, error) {
	total, err := SumAncillary(unitPrice, currency, quantity)
	if err != nil {
		return Line{}, err
	}
	if total.Currency != b.currency {
		return Line{}, fmt.Errorf("%w: %s line in %s order", domain.ErrCurrencyMismatch, total.Currency, b.currency)
	}
	unit, _ := domain.NewMoney(unitPrice, currency)
	line := Line{Kind: kind, Quantity: quantity, Unit: unit, Total: total}
	b.lines = append(b.lines, line)
	return line, nil
}

func (b *Basket) Lines() []Line {
	return append([]Line(nil), b.lines...)
}

func (b *Basket) Total() domain.Money {
	total := domain.Zero(b.currency)
	for _, l := range b.lines {
		total, _ = total.Add(l.Total)
	}
	return total
}
