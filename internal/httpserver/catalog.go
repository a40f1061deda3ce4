package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	authmw "github.com/sunu-rekolt/marketplace/pkg/middleware/auth"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	p := pageOf(c)
	total, items, err := h.Svc.ListPublic(ctx, c.QueryParam("category"), p.offset, p.limit)
	if err != nil {
		return fail(l, "get_products", err)
	}

	l.Info("get_products_success", "total", total)
	return c.JSON(http.StatusOK, paged(p, total, items))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	p := pageOf(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search", err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, paged(p, total, items))
}

// GetProduct is public; an authenticated owner also sees pending and
// archived products.
func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := pathID(c, l, "get_product", "id")
	if err != nil {
		return err
	}
	viewer, _ := authmw.UserID(c)

	prod, err := h.Svc.GetProduct(ctx, id, viewer)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) FarmerProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.farmer_products")

	farmerID, err := currentUser(c, l, "farmer_products")
	if err != nil {
		return err
	}
	items, err := h.Svc.ListFarmerProducts(ctx, farmerID)
	if err != nil {
		return fail(l, "farmer_products", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	farmerID, err := currentUser(c, l, "create_product")
	if err != nil {
		return err
	}
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product", "invalid body", err)
	}

	prod, err := h.Svc.CreateProduct(ctx, farmerID, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Category:    req.Category,
	})
	if err != nil {
		return fail(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	farmerID, err := currentUser(c, l, "patch_product")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "patch_product", "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product", "invalid body", err)
	}

	prod, err := h.Svc.UpdateProduct(ctx, farmerID, id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Category:    req.Category,
	})
	if err != nil {
		return fail(l, "patch_product", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) Archive(c echo.Context) error   { return h.setArchived(c, true) }
func (h *CatalogHTTP) Unarchive(c echo.Context) error { return h.setArchived(c, false) }

func (h *CatalogHTTP) setArchived(c echo.Context, archived bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.archive", "archived", archived)

	farmerID, err := currentUser(c, l, "archive")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "archive", "id")
	if err != nil {
		return err
	}
	prod, err := h.Svc.SetArchived(ctx, farmerID, id, archived)
	if err != nil {
		return fail(l, "archive", err)
	}

	l.Info("archive_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	farmerID, err := currentUser(c, l, "delete_product")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "delete_product", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, farmerID, id); err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.upload_image")

	farmerID, err := currentUser(c, l, "product_image")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "product_image", "id")
	if err != nil {
		return err
	}
	src, closeFn, err := formImage(c)
	if err != nil {
		return badRequest(l, "product_image", "missing image file", err)
	}
	defer closeFn()

	prod, err := h.Svc.UploadImage(ctx, farmerID, id, src)
	if err != nil {
		return fail(l, "product_image", err)
	}

	l.Info("product_image_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) SetApproval(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.approval")

	adminID, err := currentUser(c, l, "approval")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "approval", "id")
	if err != nil {
		return err
	}
	var req transport.ApprovalRequest
	if err := c.Bind(&req); err != nil || req.Approved == nil {
		return badRequest(l, "approval", "approved is required", err)
	}

	prod, err := h.Svc.SetApproval(ctx, adminID, id, *req.Approved)
	if err != nil {
		return fail(l, "approval", err)
	}

	l.Info("approval_success", "product_id", id, "approved", *req.Approved)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) Inputs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.inputs")

	items, err := h.Svc.ListInputs(ctx, c.QueryParam("category"))
	if err != nil {
		return fail(l, "inputs", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// optionalAuth authenticates the request only when it carries a token.
func optionalAuth(m *authmw.AuthMiddleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := m.RequireAuth(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				if _, err := c.Cookie(authmw.AccessCookie); err != nil {
					return next(c)
				}
			}
			return guarded(c)
		}
	}
}
