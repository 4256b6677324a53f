package domain

// CartLine is one selectable product variant (size/color) at a given quantity.
// Two lines with the same (ProductID, Size, Color) must merge, never duplicate.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	ImageRef  string `json:"imageRef,omitempty"`
}

// Key is the merge identity of a line inside a cart.
func (l CartLine) Key() string { return l.ProductID + "|" + l.Size + "|" + l.Color }

// Cart is the client's working set of line items. All mutations are pure
// in-memory reducers; persistence is the cart store's job.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add merges into an existing line when the variant matches, else appends.
// A quantity below 1 defaults to 1.
func (c *Cart) Add(line CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == line.Key() {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// Remove drops the line with the given identity key. Removing an absent line
// is a no-op.
func (c *Cart) Remove(key string) {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites a line's quantity in place. Anything below 1 removes
// the line, so the cart never holds a zero or negative quantity.
func (c *Cart) SetQuantity(key string, qty int) {
	if qty < 1 {
		c.Remove(key)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity = qty
			return
		}
	}
}

func (c *Cart) Clear() { c.Lines = nil }

func (c Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }
