package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/repo"
)

const (
	DefaultMonths   = 6
	MaxMonths       = 24
	DefaultTopLimit = 5
	MaxTopLimit     = 50
)

type DashboardService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

type Summary struct {
	TotalRevenue   int64 `json:"total_revenue"`
	TotalOrders    int   `json:"total_orders"`
	ProductCount   int64 `json:"product_count"`
	ActiveProducts int64 `json:"active_products"`
	UnreadAlerts   int64 `json:"unread_alerts"`
}

type MonthlySales struct {
	Month       string `json:"month"`
	TotalOrders int    `json:"total_orders"`
	Revenue     int64  `json:"revenue"`
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DashboardService) Summary(ctx context.Context, farmerID uuid.UUID) (*Summary, error) {
	lines, err := s.Repo.FarmerSaleLines(ctx, farmerID, time.Time{})
	if err != nil {
		return nil, err
	}
	counts, err := s.Repo.CountFarmerProducts(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	unread, err := s.Repo.CountUnreadAlerts(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ProductCount: counts.Total, ActiveProducts: counts.Public, UnreadAlerts: unread}
	orders := map[uuid.UUID]struct{}{}
	for _, ln := range lines {
		sum.TotalRevenue += ln.PriceAtTime * int64(ln.Quantity)
		orders[ln.OrderID] = struct{}{}
	}
	sum.TotalOrders = len(orders)
	return sum, nil
}

// MonthlySales returns one entry per calendar month, oldest first, ending
// with the current month. Months without sales are zero.
func (s *DashboardService) MonthlySales(ctx context.Context, farmerID uuid.UUID, months int) ([]MonthlySales, error) {
	if months <= 0 {
		months = DefaultMonths
	}
	if months > MaxMonths {
		months = MaxMonths
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	lines, err := s.Repo.FarmerSaleLines(ctx, farmerID, start)
	if err != nil {
		return nil, err
	}

	series := make([]MonthlySales, months)
	index := make(map[string]int, months)
	for i := range series {
		key := start.AddDate(0, i, 0).Format("2006-01")
		series[i].Month = key
		index[key] = i
	}

	seen := make(map[string]map[uuid.UUID]struct{}, months)
	for _, ln := range lines {
		key := ln.CreatedAt.UTC().Format("2006-01")
		i, ok := index[key]
		if !ok {
			continue
		}
		series[i].Revenue += ln.PriceAtTime * int64(ln.Quantity)
		if seen[key] == nil {
			seen[key] = map[uuid.UUID]struct{}{}
		}
		if _, dup := seen[key][ln.OrderID]; !dup {
			seen[key][ln.OrderID] = struct{}{}
			series[i].TotalOrders++
		}
	}
	return series, nil
}

func (s *DashboardService) TopProducts(ctx context.Context, farmerID uuid.UUID, limit int) ([]repo.TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	top, err := s.Repo.FarmerTopProducts(ctx, farmerID, limit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []repo.TopProduct{}
	}
	return top, nil
}
