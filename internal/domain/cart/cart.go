// Package cart is the in-memory cart of a buyer session.
package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrEmpty = errors.New("cart is empty")

// Item is what gets captured from a product when it is added.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	ImageURL  string
	FarmerID  uuid.UUID
}

type Line struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	FarmerID  uuid.UUID `json:"farmer_id"`
}

func (l Line) Amount() int64 { return l.Price * int64(l.Quantity) }

// Cart lines keep insertion order. Adding a product twice gives two lines.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart { return &Cart{} }

func (c *Cart) Add(it Item, quantity int) Line {
	if quantity < 1 {
		quantity = 1
	}
	l := Line{
		ID:        uuid.New(),
		ProductID: it.ProductID,
		Name:      it.Name,
		Price:     it.Price,
		Quantity:  quantity,
		ImageURL:  it.ImageURL,
		FarmerID:  it.FarmerID,
	}

	c.mu.Lock()
	c.lines = append(c.lines, l)
	c.mu.Unlock()
	return l
}

func (c *Cart) indexOf(id uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// UpdateQuantity sets the quantity of a line, removing it when quantity < 1.
// found is false when no line has that id.
func (c *Cart) UpdateQuantity(id uuid.UUID, quantity int) (line Line, removed, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return Line{}, false, false
	}
	line, removed = c.setAt(i, quantity)
	return line, removed, true
}

func (c *Cart) setAt(i, quantity int) (Line, bool) {
	if quantity < 1 {
		l := c.lines[i]
		c.removeAt(i)
		return l, true
	}
	c.lines[i].Quantity = quantity
	return c.lines[i], false
}

func (c *Cart) Increment(id uuid.UUID) (Line, bool, bool) {
	return c.step(id, 1)
}

// Decrement from 1 removes the line.
func (c *Cart) Decrement(id uuid.UUID) (Line, bool, bool) {
	return c.step(id, -1)
}

func (c *Cart) step(id uuid.UUID, delta int) (Line, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return Line{}, false, false
	}
	l, removed := c.setAt(i, c.lines[i].Quantity+delta)
	return l, removed, true
}

// Remove is a no-op when the line does not exist.
func (c *Cart) Remove(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Subtotal(c.lines)
}

func Subtotal(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount()
	}
	return total
}

type snapshot struct {
	lines []Line
}

// restore puts the snapshot lines back in front of whatever was added since.
func (c *Cart) restore(s snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make([]Line, 0, len(s.lines)+len(c.lines))
	merged = append(merged, s.lines...)
	for _, l := range c.lines {
		if !containsLine(s.lines, l.ID) {
			merged = append(merged, l)
		}
	}
	c.lines = merged
}

func containsLine(lines []Line, id uuid.UUID) bool {
	for _, l := range lines {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Checkout empties the cart before running commit with its lines and puts
// the lines back if commit fails. A concurrent Checkout sees an empty cart.
func (c *Cart) Checkout(commit func(lines []Line) error) error {
	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return ErrEmpty
	}
	snap := snapshot{lines: c.lines}
	c.lines = nil
	c.mu.Unlock()

	lines := make([]Line, len(snap.lines))
	copy(lines, snap.lines)

	if err := commit(lines); err != nil {
		c.restore(snap)
		return err
	}
	return nil
}
