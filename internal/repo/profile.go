package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/models"
)

func (r *GormRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("phone = ?", p.Phone).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Create(p).Error
	})
}

func (r *GormRepo) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProfileByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("phone = ?", phone).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	out := make(map[uuid.UUID]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []models.Profile
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// UpdateProfile applies the non-empty fields of patch.
func (r *GormRepo) UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Profile, error) {
	if len(patch) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(patch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetProfile(ctx, id)
}

// SetPushToken stores or, with nil, clears the Expo push token.
func (r *GormRepo) SetPushToken(ctx context.Context, id uuid.UUID, token *string) error {
	res := r.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).
		Updates(map[string]any{"expo_push_token": token, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func activeRefresh(tx *gorm.DB, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := tx.Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	if t.Revoked || t.ExpiresAt.Before(time.Now()) {
		return nil, ErrConflict
	}
	return &t, nil
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
// ErrConflict means the old token was already used, revoked or expired.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, tokenHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := activeRefresh(tx, oldJTI)
		if err != nil {
			return err
		}
		if cur.Token != tokenHash {
			return ErrConflict
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokenHash).
		Update("revoked", true).Error
}

func (r *GormRepo) IsRefreshActive(ctx context.Context, jti string) (bool, error) {
	_, err := activeRefresh(r.DB.WithContext(ctx), jti)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
