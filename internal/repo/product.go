package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/models"
)

type ProductFilter struct {
	Category string
}

func publicProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_approved = ? AND is_archived = ?", true, false)
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) ListPublicProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := publicProducts(r.DB.WithContext(ctx).Model(&models.Product{}))
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchPublicProducts is the SQL fallback used when no search index is
// configured.
func (r *GormRepo) SearchPublicProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := publicProducts(r.DB.WithContext(ctx).Model(&models.Product{})).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListFarmerProducts(ctx context.Context, farmerID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateProduct writes the given columns of a product owned by farmerID.
func (r *GormRepo) UpdateProduct(ctx context.Context, id, farmerID uuid.UUID, patch map[string]any) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND farmer_id = ?", id, farmerID).
		Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) SetProductApproval(ctx context.Context, id uuid.UUID, approved bool) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_approved", approved)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetProduct(ctx, id)
}

// DeletePendingProduct deletes only a pending, non-archived product of the
// farmer. ErrConflict means the product exists but is approved or archived.
func (r *GormRepo) DeletePendingProduct(ctx context.Context, id, farmerID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND farmer_id = ? AND is_approved = ? AND is_archived = ?", id, farmerID, false, false).
			Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ? AND farmer_id = ?", id, farmerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	})
}

type ProductCounts struct {
	Total  int64
	Public int64
}

func (r *GormRepo) CountFarmerProducts(ctx context.Context, farmerID uuid.UUID) (ProductCounts, error) {
	var c ProductCounts
	db := r.DB.WithContext(ctx).Model(&models.Product{}).Where("farmer_id = ?", farmerID)
	if err := db.Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := publicProducts(r.DB.WithContext(ctx).Model(&models.Product{})).
		Where("farmer_id = ?", farmerID).
		Count(&c.Public).Error; err != nil {
		return c, err
	}
	return c, nil
}

func (r *GormRepo) ListInputs(ctx context.Context, category string) ([]models.AgriculturalInput, error) {
	q := r.DB.WithContext(ctx).Model(&models.AgriculturalInput{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var items []models.AgriculturalInput
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateInput(ctx context.Context, in *models.AgriculturalInput) error {
	return r.DB.WithContext(ctx).Create(in).Error
}
