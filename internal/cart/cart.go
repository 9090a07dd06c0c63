// Package cart holds the server-side cart state container: ordered line
// items plus a tip selection, with all totals derived on demand.
package cart

import (
	"time"

	"qrdine-order-service/internal/utils"
)

type PriceOption struct {
	ID         string  `json:"id"`
	OptionName string  `json:"optionName"`
	Price      float64 `json:"price"`
}

type Line struct {
	ItemID              int64        `json:"itemId"`
	Name                string       `json:"name"`
	Price               float64      `json:"price"`
	PriceDisplay        string       `json:"priceDisplay,omitempty"`
	SelectedPriceOption *PriceOption `json:"selectedPriceOption,omitempty"`
	Quantity            int          `json:"quantity"`
	SpecialInstructions string       `json:"specialInstructions,omitempty"`
	AddedAt             time.Time    `json:"addedAt"`
}

// UnitPrice resolves the effective unit price: the selected price option
// wins, then the base price, then whatever can be parsed out of the display
// string.
func (l Line) UnitPrice() float64 {
	if l.SelectedPriceOption != nil {
		return l.SelectedPriceOption.Price
	}
	if l.Price > 0 {
		return l.Price
	}
	return utils.ParsePriceDisplay(l.PriceDisplay)
}

func (l Line) LineTotal() float64 {
	return utils.Round2(l.UnitPrice() * float64(l.Quantity))
}

// Cart is an ordered sequence of lines plus an optional tip. TipPercent and
// TipAmount are mutually exclusive; setting one clears the other.
type Cart struct {
	Lines      []Line   `json:"items"`
	TipPercent *float64 `json:"tipPercentage,omitempty"`
	TipAmount  *float64 `json:"tipAmount,omitempty"`
}

func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// AddItem appends a line. Identical items become separate lines; there is no
// dedup on purpose.
func (c *Cart) AddItem(line Line) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now().UTC()
	}
	c.Lines = append(c.Lines, line)
}

func (c *Cart) RemoveAt(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

// UpdateQuantity replaces the quantity at index. Quantities below 1 are a
// no-op rather than an implicit remove.
func (c *Cart) UpdateQuantity(index, quantity int) {
	if quantity < 1 {
		return
	}
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines[index].Quantity = quantity
}

// Clear empties the cart and resets the tip selection.
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.TipPercent = nil
	c.TipAmount = nil
}

func (c *Cart) SetTipPercent(percent float64) {
	if percent < 0 {
		return
	}
	c.TipPercent = &percent
	c.TipAmount = nil
}

func (c *Cart) SetCustomTip(amount float64) {
	if amount < 0 {
		return
	}
	c.TipAmount = &amount
	c.TipPercent = nil
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) Subtotal() float64 {
	subtotal := 0.0
	for _, line := range c.Lines {
		subtotal = utils.Round2(subtotal + line.LineTotal())
	}
	return subtotal
}

func (c *Cart) TipValue() float64 {
	if c.TipPercent != nil {
		return utils.Round2(c.Subtotal() * *c.TipPercent / 100)
	}
	if c.TipAmount != nil {
		return utils.Round2(*c.TipAmount)
	}
	return 0
}

func (c *Cart) Total() float64 {
	return utils.Round2(c.Subtotal() + c.TipValue())
}
