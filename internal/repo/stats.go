package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
)

func revenueStatuses() []order.Status {
	return []order.Status{order.StatusPaid, order.StatusDelivering, order.StatusDelivered, order.StatusReceived}
}

// SaleLine is one order line of a farmer together with its order date.
type SaleLine struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	PriceAtTime int64
	CreatedAt   time.Time
}

// FarmerSaleLines returns the farmer's lines on revenue orders created at or
// after since. A zero since means all time.
func (r *GormRepo) FarmerSaleLines(ctx context.Context, farmerID uuid.UUID, since time.Time) ([]SaleLine, error) {
	q := r.DB.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.order_id, oi.product_id, oi.product_name, oi.quantity, oi.price_at_time, o.created_at").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("oi.farmer_id = ? AND o.status IN ?", farmerID, revenueStatuses())
	if !since.IsZero() {
		q = q.Where("o.created_at >= ?", since)
	}

	var rows []SaleLine
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type TopProduct struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	TotalQuantity int64     `json:"total_quantity"`
	Revenue       int64     `json:"revenue"`
}

func (r *GormRepo) FarmerTopProducts(ctx context.Context, farmerID uuid.UUID, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.DB.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id, oi.product_name, SUM(oi.quantity) AS total_quantity, SUM(oi.quantity * oi.price_at_time) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("oi.farmer_id = ? AND o.status IN ?", farmerID, revenueStatuses()).
		Group("oi.product_id, oi.product_name").
		Order("total_quantity DESC, oi.product_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
