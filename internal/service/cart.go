package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/repo"
)

const msgLineNotFound = "Article introuvable dans le panier"

type CartService struct {
	Repo     *repo.GormRepo
	Sessions *cart.Sessions
}

type CartView struct {
	Lines []cart.Line `json:"lines"`
	Count int         `json:"count"`
	Total int64       `json:"total"`
}

func viewOf(c *cart.Cart) *CartView {
	lines := c.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return &CartView{Lines: lines, Count: len(lines), Total: cart.Subtotal(lines)}
}

func (s *CartService) View(buyerID uuid.UUID) *CartView {
	return viewOf(s.Sessions.Open(buyerID))
}

// Add captures the live price of a public product into a new line.
func (s *CartService) Add(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*CartView, error) {
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	if !p.Public() {
		return nil, fail(ErrNotFound, msgProductNotFound)
	}

	c := s.Sessions.Open(buyerID)
	c.Add(cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		FarmerID:  p.FarmerID,
	}, quantity)
	return viewOf(c), nil
}

func (s *CartService) SetQuantity(buyerID, lineID uuid.UUID, quantity int) (*CartView, error) {
	c := s.Sessions.Open(buyerID)
	if _, _, found := c.UpdateQuantity(lineID, quantity); !found {
		return nil, fail(ErrNotFound, msgLineNotFound)
	}
	return viewOf(c), nil
}

func (s *CartService) Increment(buyerID, lineID uuid.UUID) (*CartView, error) {
	c := s.Sessions.Open(buyerID)
	if _, _, found := c.Increment(lineID); !found {
		return nil, fail(ErrNotFound, msgLineNotFound)
	}
	return viewOf(c), nil
}

func (s *CartService) Decrement(buyerID, lineID uuid.UUID) (*CartView, error) {
	c := s.Sessions.Open(buyerID)
	if _, _, found := c.Decrement(lineID); !found {
		return nil, fail(ErrNotFound, msgLineNotFound)
	}
	return viewOf(c), nil
}

// Remove is a no-op for an unknown line.
func (s *CartService) Remove(buyerID, lineID uuid.UUID) *CartView {
	c := s.Sessions.Open(buyerID)
	c.Remove(lineID)
	return viewOf(c)
}

func (s *CartService) Clear(buyerID uuid.UUID) *CartView {
	c := s.Sessions.Open(buyerID)
	c.Clear()
	return viewOf(c)
}
