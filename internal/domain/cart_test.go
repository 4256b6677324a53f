package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id, size, color string, qty int, price int64) CartLine {
	return CartLine{ProductID: id, Name: id, UnitPrice: price, Quantity: qty, Size: size, Color: color}
}

func TestCartAddMergesSameVariant(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 2, 18500))
	c.Add(line("tee-1", "M", "black", 3, 18500))

	require.Len(t, c.Lines, 1, "same (product,size,color) must merge, never duplicate")
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestCartAddDifferentVariantsStaySeparate(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 1, 18500))
	c.Add(line("tee-1", "L", "black", 1, 18500))
	c.Add(line("tee-1", "M", "bone", 1, 18500))

	assert.Len(t, c.Lines, 3)
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 0, 18500))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestCartSetQuantityBelowOneRemoves(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 2, 18500))
	key := c.Lines[0].Key()

	c.SetQuantity(key, 0)
	assert.Empty(t, c.Lines)

	c.Add(line("tee-1", "M", "black", 2, 18500))
	c.SetQuantity(key, -3)
	assert.Empty(t, c.Lines, "cart never holds a zero or negative quantity line")
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 1, 18500))
	c.Remove(line("hoodie-9", "L", "grey", 1, 0).Key())
	assert.Len(t, c.Lines, 1)
}

func TestCartDerivedValues(t *testing.T) {
	var c Cart
	c.Add(line("tee-1", "M", "black", 2, 5000))
	c.Add(line("hoodie-9", "L", "grey", 1, 45000))

	assert.Equal(t, int64(55000), c.Subtotal())
	assert.Equal(t, 3, c.ItemCount())
	assert.False(t, c.Empty())

	c.Clear()
	assert.True(t, c.Empty())
	assert.Zero(t, c.Subtotal())
}
