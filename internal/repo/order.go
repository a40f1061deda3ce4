package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
	"github.com/sunu-rekolt/marketplace/internal/models"
)

// CreateOrder writes the header and every line in one transaction. A failing
// line insert rolls the header back.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := o.Items
		if err := tx.Omit("Items").Create(o).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		o.Items = items
		return nil
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormRepo) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListFarmerOrders returns the orders carrying lines of farmerID, each with
// only that farmer's lines loaded.
func (r *GormRepo) ListFarmerOrders(ctx context.Context, farmerID uuid.UUID, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	sub := r.DB.Model(&models.OrderItem{}).Select("order_id").Where("farmer_id = ?", farmerID)
	if err := r.DB.WithContext(ctx).
		Preload("Items", "farmer_id = ?", farmerID).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Relation loads the order and how userID relates to it.
func (r *GormRepo) Relation(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, order.Relation, error) {
	o, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return nil, order.Relation{}, err
	}
	rel := order.Relation{Buyer: o.BuyerID == userID}
	for _, it := range o.Items {
		if it.FarmerID == userID {
			rel.Farmer = true
			break
		}
	}
	return o, rel, nil
}

// UpdateStatusIf moves the order from one status to another only if it is
// still in from. It reports whether the row changed.
func (r *GormRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to order.Status) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
