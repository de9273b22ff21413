// Package cart holds the shopper's selected items. A Cart is a plain value: the
// client persists it between visits with Marshal/Unmarshal and submits its lines
// at checkout.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is a single cart line. Lines are keyed by (ID, Variant).
type Item struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Variant  string          `json:"variant,omitempty"`
}

func (i Item) sameLine(id, variant string) bool {
	return i.ID == id && i.Variant == variant
}

// Cart is an ordered list of items.
type Cart struct {
	Items []Item `json:"items"`
}

// New returns a cart holding items, merging duplicate lines.
func New(items ...Item) *Cart {
	c := &Cart{Items: []Item{}}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add inserts item, or increases the quantity of the existing line with the same id and variant.
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].sameLine(item.ID, item.Variant) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Remove drops the line with the given id and variant.
func (c *Cart) Remove(id, variant string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if !it.sameLine(id, variant) {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// UpdateQuantity sets the quantity of a line. A quantity below one removes it.
func (c *Cart) UpdateQuantity(id string, quantity int, variant string) {
	if quantity < 1 {
		c.Remove(id, variant)
		return
	}
	for i := range c.Items {
		if c.Items[i].sameLine(id, variant) {
			c.Items[i].Quantity = quantity
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []Item{}
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.Items)
}

// Total is the sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Marshal serializes the cart for client-side storage.
func (c *Cart) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal restores a stored cart. Corrupt data yields an empty cart, the same
// as a first visit.
func Unmarshal(data []byte) *Cart {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil || c.Items == nil {
		return New()
	}
	return New(c.Items...)
}
