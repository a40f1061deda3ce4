package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflict")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo { return &GormRepo{DB: db} }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
