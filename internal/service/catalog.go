package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/storage"
	"github.com/sunu-rekolt/marketplace/pkg/events"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

const (
	EventProductCreated         = "product_created"
	EventProductUpdated         = "product_updated"
	EventProductArchived        = "product_archived"
	EventProductUnarchived      = "product_unarchived"
	EventProductDeleted         = "product_deleted"
	EventProductApprovalChanged = "product_approval_changed"

	msgProductNotFound = "Produit introuvable"
)

// ProductIndex is the full-text index over the public catalog.
type ProductIndex interface {
	Sync(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Index    ProductIndex
	Events   events.Publisher
	Notifier *NotificationService
	Media    ImageStore
}

type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Quantity    int
	Unit        string
	Category    string
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
	Quantity    *int
	Unit        *string
	Category    *string
}

func (s *CatalogService) ListPublic(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	if category != "" && !slices.Contains(models.ProductCategories, category) {
		return 0, nil, fail(ErrValidation, "Catégorie inconnue")
	}
	return s.Repo.ListPublicProducts(ctx, repo.ProductFilter{Category: category}, offset, limit)
}

// Search uses the index when one is configured and the SQL match otherwise.
// An index failure also falls back to SQL.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fail(ErrValidation, "Veuillez saisir un terme de recherche")
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		l.Warn("search_index_error", "reason", "falling back to sql", "error", err)
	}
	return s.Repo.SearchPublicProducts(ctx, query, offset, limit)
}

// GetProduct returns a public product, or any product of viewerID.
func (s *CatalogService) GetProduct(ctx context.Context, id, viewerID uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	if !p.Public() && p.FarmerID != viewerID {
		return nil, fail(ErrNotFound, msgProductNotFound)
	}
	return p, nil
}

func (s *CatalogService) ListFarmerProducts(ctx context.Context, farmerID uuid.UUID) ([]models.Product, error) {
	return s.Repo.ListFarmerProducts(ctx, farmerID)
}

func validateProduct(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fail(ErrValidation, "Le nom du produit est requis")
	case in.Price <= 0:
		return fail(ErrValidation, "Le prix doit être supérieur à 0")
	case in.Quantity < 0:
		return fail(ErrValidation, "La quantité ne peut pas être négative")
	case !slices.Contains(models.ProductUnits, in.Unit):
		return fail(ErrValidation, "Unité inconnue")
	case !slices.Contains(models.ProductCategories, in.Category):
		return fail(ErrValidation, "Catégorie inconnue")
	}
	return nil
}

// CreateProduct always stores a pending product.
func (s *CatalogService) CreateProduct(ctx context.Context, farmerID uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p := &models.Product{
		FarmerID:    farmerID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		Category:    in.Category,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, EventProductCreated, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, farmerID, id uuid.UUID, in ProductPatch) (*models.Product, error) {
	cur, err := s.owned(ctx, farmerID, id)
	if err != nil {
		return nil, err
	}

	merged := ProductInput{
		Name: cur.Name, Description: cur.Description, Price: cur.Price,
		Quantity: cur.Quantity, Unit: cur.Unit, Category: cur.Category,
	}
	patch := map[string]any{}
	if in.Name != nil {
		merged.Name = strings.TrimSpace(*in.Name)
		patch["name"] = merged.Name
	}
	if in.Description != nil {
		merged.Description = strings.TrimSpace(*in.Description)
		patch["description"] = merged.Description
	}
	if in.Price != nil {
		merged.Price = *in.Price
		patch["price"] = merged.Price
	}
	if in.Quantity != nil {
		merged.Quantity = *in.Quantity
		patch["quantity"] = merged.Quantity
	}
	if in.Unit != nil {
		merged.Unit = *in.Unit
		patch["unit"] = merged.Unit
	}
	if in.Category != nil {
		merged.Category = *in.Category
		patch["category"] = merged.Category
	}
	if err := validateProduct(merged); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return cur, nil
	}

	p, err := s.Repo.UpdateProduct(ctx, id, farmerID, patch)
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	s.changed(ctx, EventProductUpdated, p)
	return p, nil
}

func (s *CatalogService) SetArchived(ctx context.Context, farmerID, id uuid.UUID, archived bool) (*models.Product, error) {
	p, err := s.Repo.UpdateProduct(ctx, id, farmerID, map[string]any{"is_archived": archived})
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	ev := EventProductUnarchived
	if archived {
		ev = EventProductArchived
	}
	s.changed(ctx, ev, p)
	return p, nil
}

// DeleteProduct removes a product that is still pending and not archived.
func (s *CatalogService) DeleteProduct(ctx context.Context, farmerID, id uuid.UUID) error {
	err := s.Repo.DeletePendingProduct(ctx, id, farmerID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return failWrap(ErrNotFound, msgProductNotFound, err)
	case errors.Is(err, repo.ErrConflict):
		return failWrap(ErrConflict, "Seuls les produits en attente et non archivés peuvent être supprimés", err)
	case err != nil:
		return err
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete")
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("index_error", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, EventProductDeleted, id, map[string]any{"product_id": id.String(), "farmer_id": farmerID.String()})
	return nil
}

func (s *CatalogService) UploadImage(ctx context.Context, farmerID, id uuid.UUID, src io.Reader) (*models.Product, error) {
	if _, err := s.owned(ctx, farmerID, id); err != nil {
		return nil, err
	}
	obj, err := putImage(s.Media, storage.BucketProductImages, farmerID, src)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.UpdateProduct(ctx, id, farmerID, map[string]any{"image_url": obj.URL})
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	s.changed(ctx, EventProductUpdated, p)
	return p, nil
}

// SetApproval is the admin decision on a product. The owner is told either
// way.
func (s *CatalogService) SetApproval(ctx context.Context, adminID, id uuid.UUID, approved bool) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.approval")

	p, err := s.Repo.SetProductApproval(ctx, id, approved)
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	s.changed(ctx, EventProductApprovalChanged, p)

	if s.Notifier != nil {
		a := models.Alert{
			UserID:           p.FarmerID,
			ActorID:          &adminID,
			Type:             models.AlertProductApproved,
			Title:            "Produit approuvé",
			Message:          fmt.Sprintf("Votre produit « %s » est maintenant visible dans le catalogue.", p.Name),
			RelatedProductID: &p.ID,
		}
		if !approved {
			a.Type = models.AlertProductRejected
			a.Title = "Produit refusé"
			a.Message = fmt.Sprintf("Votre produit « %s » n'a pas été approuvé.", p.Name)
			a.Importance = models.ImportanceHigh
		}
		if err := s.Notifier.Emit(ctx, a); err != nil {
			l.Warn("alert_error", "product_id", p.ID, "error", err)
		}
	}
	return p, nil
}

func (s *CatalogService) ListInputs(ctx context.Context, category string) ([]models.AgriculturalInput, error) {
	if category != "" && !slices.Contains(models.InputCategories, category) {
		return nil, fail(ErrValidation, "Catégorie inconnue")
	}
	return s.Repo.ListInputs(ctx, category)
}

func (s *CatalogService) owned(ctx context.Context, farmerID, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgProductNotFound)
	}
	if p.FarmerID != farmerID {
		return nil, fail(ErrNotFound, msgProductNotFound)
	}
	return p, nil
}

// changed keeps the index in step with p and publishes ev. Both are
// best-effort.
func (s *CatalogService) changed(ctx context.Context, ev string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.Sync(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("index_error", "svc", "catalog", "product_id", p.ID, "error", err)
		}
	}
	s.publish(ctx, ev, p.ID, map[string]any{
		"product_id":  p.ID.String(),
		"farmer_id":   p.FarmerID.String(),
		"is_approved": p.IsApproved,
		"is_archived": p.IsArchived,
		"price":       p.Price,
	})
}

func (s *CatalogService) publish(ctx context.Context, ev string, id uuid.UUID, data map[string]any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicProducts, id.String(), events.New(ev, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "svc", "catalog", "event", ev, "error", err)
	}
}
