package cart_test

import (
	"testing"

	"jammal/internal/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCart_AddMergesSameLine(t *testing.T) {
	c := cart.New()
	c.Add(cart.Item{ID: "p1", Price: price("100"), Quantity: 1, Variant: "6ml"})
	c.Add(cart.Item{ID: "p1", Price: price("100"), Quantity: 2, Variant: "6ml"})
	c.Add(cart.Item{ID: "p1", Price: price("180"), Quantity: 1, Variant: "12ml"})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "12ml", c.Items[1].Variant)
}

func TestCart_RemoveAndUpdate(t *testing.T) {
	c := cart.New(
		cart.Item{ID: "p1", Price: price("100"), Quantity: 1},
		cart.Item{ID: "p2", Price: price("50"), Quantity: 4},
	)

	c.UpdateQuantity("p2", 2, "")
	assert.Equal(t, 2, c.Items[1].Quantity)

	c.Remove("p1", "")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "p2", c.Items[0].ID)

	c.UpdateQuantity("p2", 0, "")
	assert.Equal(t, 0, c.Len())
}

func TestCart_Total(t *testing.T) {
	c := cart.New(
		cart.Item{ID: "p1", Price: price("100"), Quantity: 2},
		cart.Item{ID: "p2", Price: price("49.99"), Quantity: 3},
	)
	assert.True(t, price("349.97").Equal(c.Total()))

	c.Clear()
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCart_MarshalRoundTrip(t *testing.T) {
	c := cart.New(cart.Item{ID: "p1", Name: "Royal Oudh", Price: price("1499"), Quantity: 1, Variant: "6ml"})
	data, err := c.Marshal()
	require.NoError(t, err)

	restored := cart.Unmarshal(data)
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, "Royal Oudh", restored.Items[0].Name)
	assert.True(t, price("1499").Equal(restored.Items[0].Price))
}

func TestCart_UnmarshalCorruptFallsBackToEmpty(t *testing.T) {
	for _, raw := range []string{"", "{", `{"items":null}`, `[1,2]`} {
		c := cart.Unmarshal([]byte(raw))
		assert.Equal(t, 0, c.Len(), raw)
		assert.NotNil(t, c.Items)
	}
}
